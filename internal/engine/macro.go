package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
)

const fallbackMacro = "Macro conditions not met. Supply at least one threshold, or relax the supplied ones."

// MacroEngine compares externally supplied macro indicator readings (CPI,
// dollar-index YTD, policy rate) against caller-supplied thresholds. All
// supplied thresholds must hold simultaneously to emit a single synthetic
// signal match. With no thresholds supplied, no match is produced.
type MacroEngine struct {
	tracker *healthTracker
	logger  *logrus.Logger
	now     func() time.Time
}

// NewMacroEngine creates the macro-signal engine.
func NewMacroEngine(logger *logrus.Logger) *MacroEngine {
	return &MacroEngine{tracker: newHealthTracker(), logger: logger, now: time.Now}
}

func (e *MacroEngine) Kind() models.EventKind      { return models.EventMacroSignal }
func (e *MacroEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the evaluation inside the fault-isolation boundary.
func (e *MacroEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackMacro, func() (*models.EngineResult, error) {
		return e.evaluate(input)
	})
}

func (e *MacroEngine) evaluate(input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.MacroParams)
	if !ok {
		return nil, wrongParams(e.Kind())
	}

	type check struct {
		name      string
		value     float64
		threshold *float64
	}
	checks := []check{
		{"cpi", params.CPI, params.CPIThreshold},
		{"dollar_index_ytd", params.DollarIndexYTD, params.DollarYTDThreshold},
		{"policy_rate", params.PolicyRate, params.PolicyRateThreshold},
	}

	supplied := 0
	met := 0
	for _, c := range checks {
		if c.threshold == nil {
			continue
		}
		supplied++
		if c.value >= *c.threshold {
			met++
		}
	}

	summary := map[string]interface{}{
		"thresholds_supplied": supplied,
		"thresholds_met":      met,
		"cpi":                 params.CPI,
		"dollar_index_ytd":    params.DollarIndexYTD,
		"policy_rate":         params.PolicyRate,
	}

	var matches []models.MatchEvent
	if supplied > 0 && met == supplied {
		matches = append(matches, models.MatchEvent{
			Date:   e.now().UTC(),
			Kind:   e.Kind(),
			Detail: "macro_signal",
			Values: map[string]float64{
				"cpi":              params.CPI,
				"dollar_index_ytd": params.DollarIndexYTD,
				"policy_rate":      params.PolicyRate,
			},
		})
	}
	summary["total_matches"] = len(matches)

	e.logger.WithFields(logrus.Fields{
		"engine":   e.Kind(),
		"supplied": supplied,
		"met":      met,
	}).Debug("Macro evaluation complete")

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary}, nil
}
