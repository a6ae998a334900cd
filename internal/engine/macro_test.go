package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/market-patterns/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestMacroAllThresholdsMet(t *testing.T) {
	eng := NewMacroEngine(testLogger())
	fixed := utcDay(2024, time.May, 1)
	eng.now = func() time.Time { return fixed }

	result := eng.Analyze(context.Background(), Input{
		Params: models.MacroParams{
			CPI:                 3.4,
			DollarIndexYTD:      2.1,
			PolicyRate:          5.25,
			CPIThreshold:        floatPtr(3.0),
			DollarYTDThreshold:  floatPtr(2.0),
			PolicyRateThreshold: floatPtr(5.0),
		},
	})

	require.True(t, result.Success)
	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, fixed.UTC(), match.Date)
	assert.Equal(t, "macro_signal", match.Detail)
	assert.Equal(t, 3, result.Summary["thresholds_supplied"])
	assert.Equal(t, 3, result.Summary["thresholds_met"])
}

func TestMacroPartialThresholdsNoMatch(t *testing.T) {
	eng := NewMacroEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Params: models.MacroParams{
			CPI:          2.4,
			PolicyRate:   5.25,
			CPIThreshold: floatPtr(3.0), // 2.4 < 3.0
		},
	})

	require.True(t, result.Success)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 1, result.Summary["thresholds_supplied"])
	assert.Equal(t, 0, result.Summary["thresholds_met"])
}

func TestMacroNoThresholdsNoMatch(t *testing.T) {
	eng := NewMacroEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Params: models.MacroParams{CPI: 3.4, DollarIndexYTD: 2.1, PolicyRate: 5.25},
	})

	require.True(t, result.Success)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 0, result.Summary["thresholds_supplied"])
}

func TestMacroSubsetOfThresholds(t *testing.T) {
	eng := NewMacroEngine(testLogger())
	result := eng.Analyze(context.Background(), Input{
		Params: models.MacroParams{
			CPI:                 3.4,
			PolicyRate:          5.25,
			CPIThreshold:        floatPtr(3.0),
			PolicyRateThreshold: floatPtr(5.0),
		},
	})

	require.True(t, result.Success)
	assert.Len(t, result.Matches, 1, "only supplied thresholds participate")
}
