package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/market-patterns/internal/models"
)

func TestPercentMoveDetectsUpMove(t *testing.T) {
	start := utcDay(2024, time.January, 1)
	s := flatSeries(start, 20, 100)
	s[12].Close = 105.2 // 5.2% above the close five bars earlier

	eng := NewPercentMoveEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: s,
		Params: models.PercentMoveParams{Days: 5, Threshold: 5.0, Direction: models.MoveUp},
	})

	require.True(t, result.Success)
	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, s[12].Date, match.Date)
	assert.InDelta(t, 5.2, match.Values["return"], 1e-6)
	assert.InDelta(t, 100.0, match.Values["start_price"], 1e-9)
	assert.InDelta(t, 105.2, match.Values["end_price"], 1e-9)
	assert.Equal(t, 1, result.Summary["total_matches"])
}

func TestPercentMoveDownIgnoresRallies(t *testing.T) {
	start := utcDay(2024, time.January, 1)
	s := flatSeries(start, 20, 100)
	s[8].Close = 93.0  // -7% over five bars
	s[15].Close = 110.0

	eng := NewPercentMoveEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: s,
		Params: models.PercentMoveParams{Days: 5, Threshold: 5.0, Direction: models.MoveDown},
	})

	require.True(t, result.Success)
	var downMatches int
	for _, m := range result.Matches {
		assert.LessOrEqual(t, m.Values["return"], -5.0)
		downMatches++
	}
	assert.Greater(t, downMatches, 0)
}

func TestPercentMoveBothDirections(t *testing.T) {
	start := utcDay(2024, time.January, 1)
	s := flatSeries(start, 30, 100)
	s[6].Close = 107.0
	s[20].Close = 92.0

	eng := NewPercentMoveEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: s,
		Params: models.PercentMoveParams{Days: 5, Threshold: 5.0, Direction: models.MoveBoth},
	})

	require.True(t, result.Success)
	seen := map[float64]int{}
	for _, m := range result.Matches {
		seen[m.Values["direction"]]++
	}
	assert.Greater(t, seen[1.0], 0, "expected at least one up match")
	assert.Greater(t, seen[-1.0], 0, "expected at least one down match")
}

func TestPercentMoveEmptySeries(t *testing.T) {
	eng := NewPercentMoveEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Params: models.PercentMoveParams{Days: 5, Threshold: 5.0, Direction: models.MoveUp},
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, models.ErrEmptySeries.Error())
	assert.NotEmpty(t, result.Fallback)

	health := eng.Health()
	assert.False(t, health.Healthy)
	assert.Equal(t, uint64(1), health.ErrorCount)
}

func TestPercentMoveWrongParamsIsolated(t *testing.T) {
	eng := NewPercentMoveEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: flatSeries(utcDay(2024, time.January, 1), 10, 100),
		Params: models.ReversalParams{OpenThreshold: 1, CloseThreshold: 1},
	})

	require.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, fallbackPercentMove, result.Fallback)
}

func TestPercentMoveHealthCounters(t *testing.T) {
	eng := NewPercentMoveEngine(testLogger())
	s := flatSeries(utcDay(2024, time.January, 1), 10, 100)
	params := models.PercentMoveParams{Days: 5, Threshold: 5.0, Direction: models.MoveUp}

	eng.Analyze(context.Background(), Input{Series: s, Params: params})
	eng.Analyze(context.Background(), Input{Params: params}) // empty series fails
	eng.Analyze(context.Background(), Input{Series: s, Params: params})

	health := eng.Health()
	assert.Equal(t, uint64(2), health.SuccessCount)
	assert.Equal(t, uint64(1), health.ErrorCount)
	assert.True(t, health.Healthy, "health recovers after a successful run")
	assert.InDelta(t, 2.0/3.0, health.SuccessRate(), 1e-9)
}
