package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/market-patterns/internal/models"
)

// reversalDay gaps up 2.5% from the prior close and sells off 1.5%
// intraday, a bearish reversal at (open 2, close 1) thresholds but not at
// (open 2, close 1.6).
func reversalSeries() models.MarketSeries {
	start := utcDay(2024, time.June, 3)
	s := flatSeries(start, 5, 100)
	s[2].Open = 102.5
	s[2].Close = 102.5 * 0.985
	s[3].Open = s[2].Close
	s[3].Close = s[2].Close
	s[4].Open = s[3].Close
	s[4].Close = s[3].Close
	return s
}

func TestReversalBearishMatch(t *testing.T) {
	eng := NewReversalEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: reversalSeries(),
		Params: models.ReversalParams{OpenThreshold: 2.0, CloseThreshold: 1.0},
	})

	require.True(t, result.Success)
	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, "bearish_reversal", match.Detail)
	assert.InDelta(t, 2.5, match.Values["open_move"], 1e-9)
	assert.InDelta(t, -1.5, match.Values["close_move"], 1e-9)
	assert.InDelta(t, 1.0, match.Values["magnitude"], 1e-9)
	assert.Equal(t, 1, result.Summary["bearish_count"])
}

func TestReversalTighterCloseThresholdNoMatch(t *testing.T) {
	eng := NewReversalEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: reversalSeries(),
		Params: models.ReversalParams{OpenThreshold: 2.0, CloseThreshold: 1.6},
	})

	require.True(t, result.Success)
	assert.Empty(t, result.Matches)
}

func TestReversalBullishMatch(t *testing.T) {
	start := utcDay(2024, time.June, 3)
	s := flatSeries(start, 4, 100)
	s[1].Open = 97.0          // gap down 3%
	s[1].Close = 97.0 * 1.02  // recover 2% into the close
	s[2].Open = s[1].Close
	s[2].Close = s[1].Close
	s[3].Open = s[2].Close
	s[3].Close = s[2].Close

	eng := NewReversalEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Series: s,
		Params: models.ReversalParams{OpenThreshold: 2.0, CloseThreshold: 1.0},
	})

	require.True(t, result.Success)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "bullish_reversal", result.Matches[0].Detail)
	assert.Equal(t, s[1].Date, result.Matches[0].Date)
}

func TestReversalEmptySeriesFails(t *testing.T) {
	eng := NewReversalEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Params: models.ReversalParams{OpenThreshold: 2.0, CloseThreshold: 1.0},
	})

	require.False(t, result.Success)
	assert.Equal(t, fallbackReversal, result.Fallback)
}
