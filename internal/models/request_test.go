package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentMoveParamsValidation(t *testing.T) {
	valid := PercentMoveParams{Days: 5, Threshold: 5, Direction: MoveUp}
	require.NoError(t, valid.Validate())

	assert.ErrorIs(t, PercentMoveParams{Days: 0, Threshold: 5, Direction: MoveUp}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, PercentMoveParams{Days: 5, Threshold: 5, Direction: "sideways"}.Validate(), ErrInvalidParams)
}

func TestMomentumParamsValidation(t *testing.T) {
	valid := MomentumParams{SMAPeriod: 20, Days: 10, Type: MomentumBullish, Threshold: 5}
	require.NoError(t, valid.Validate())
	assert.Equal(t, EventMomentumBullish, valid.Kind())

	bearish := valid
	bearish.Type = MomentumBearish
	assert.Equal(t, EventMomentumBearish, bearish.Kind())

	invalid := valid
	invalid.Type = "sideways"
	assert.ErrorIs(t, invalid.Validate(), ErrInvalidParams)
}

func TestVolatilityParamsValidation(t *testing.T) {
	valid := VolatilityParams{IndexSymbol: "VIX", VIXThreshold: 30, PriceCondition: "gap_down", PriceThreshold: 2}
	require.NoError(t, valid.Validate())

	invalid := valid
	invalid.PriceCondition = "sideways"
	assert.ErrorIs(t, invalid.Validate(), ErrInvalidParams)
}

func TestTOYParamsValidation(t *testing.T) {
	valid := TOYParams{Ticker: "SPY", FirstYear: 2000, LastYear: 2020, TOYStart: "11-19", TOYEnd: "01-19", Threshold: 3}
	require.NoError(t, valid.Validate())

	t.Run("year ordering", func(t *testing.T) {
		p := valid
		p.FirstYear, p.LastYear = 2020, 2000
		assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

		p.FirstYear, p.LastYear = 2020, 2020
		assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
	})

	t.Run("threshold range", func(t *testing.T) {
		p := valid
		p.Threshold = 25
		assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

		p.Threshold = -1
		assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
	})

	t.Run("boundary format", func(t *testing.T) {
		for _, bad := range []string{"13-01", "02-32", "0-10", "Jan-19", "1119", "11-19-20"} {
			p := valid
			p.TOYStart = bad
			assert.ErrorIs(t, p.Validate(), ErrInvalidParams, "boundary %q must be rejected", bad)
		}
	})
}

func TestParseMonthDay(t *testing.T) {
	month, day, err := ParseMonthDay("11-19")
	require.NoError(t, err)
	assert.Equal(t, time.November, month)
	assert.Equal(t, 19, day)

	month, day, err = ParseMonthDay("1-5")
	require.NoError(t, err)
	assert.Equal(t, time.January, month)
	assert.Equal(t, 5, day)

	_, _, err = ParseMonthDay("13-01")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestNewAnalysisRequestAssignsID(t *testing.T) {
	a := NewAnalysisRequest(EventPercentMove, "SPY", PercentMoveParams{Days: 5, Threshold: 5, Direction: MoveUp})
	b := NewAnalysisRequest(EventPercentMove, "SPY", PercentMoveParams{Days: 5, Threshold: 5, Direction: MoveUp})

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, EventPercentMove, a.Kind)
}

func TestHealthStatusSuccessRate(t *testing.T) {
	assert.Equal(t, 1.0, HealthStatus{}.SuccessRate(), "untested engines report full health")
	assert.InDelta(t, 0.75, HealthStatus{SuccessCount: 3, ErrorCount: 1}.SuccessRate(), 1e-9)
	assert.Zero(t, HealthStatus{ErrorCount: 4}.SuccessRate())
}

func TestMarketSeriesValidate(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC) }
	sorted := MarketSeries{{Date: d(1)}, {Date: d(2)}, {Date: d(5)}}
	require.NoError(t, sorted.Validate())

	duplicate := MarketSeries{{Date: d(1)}, {Date: d(1)}}
	assert.ErrorIs(t, duplicate.Validate(), ErrSeriesNotSorted)

	backwards := MarketSeries{{Date: d(5)}, {Date: d(2)}}
	assert.ErrorIs(t, backwards.Validate(), ErrSeriesNotSorted)
}

func TestFailedResultShape(t *testing.T) {
	result := FailedResult(ErrEmptySeries, "try a wider date range")

	assert.False(t, result.Success)
	assert.Empty(t, result.Matches)
	assert.Equal(t, ErrEmptySeries.Error(), result.Error)
	assert.Equal(t, "try a wider date range", result.Fallback)
}
