package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
	"github.com/yourusername/market-patterns/internal/series"
)

const fallbackVolatility = "No volatility spikes matched the price condition. Try a lower index threshold."

// VolatilityEngine finds days where the volatility index closed above a
// threshold while the price action satisfied a directional condition. The
// price series and index series are inner-joined on date first.
type VolatilityEngine struct {
	tracker *healthTracker
	logger  *logrus.Logger
}

// NewVolatilityEngine creates the volatility-spike engine.
func NewVolatilityEngine(logger *logrus.Logger) *VolatilityEngine {
	return &VolatilityEngine{tracker: newHealthTracker(), logger: logger}
}

func (e *VolatilityEngine) Kind() models.EventKind      { return models.EventVolatilitySpike }
func (e *VolatilityEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the scan inside the fault-isolation boundary.
func (e *VolatilityEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackVolatility, func() (*models.EngineResult, error) {
		return e.detect(input)
	})
}

func (e *VolatilityEngine) detect(input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.VolatilityParams)
	if !ok {
		return nil, wrongParams(e.Kind())
	}
	if len(input.Series) == 0 || len(input.Secondary) == 0 {
		return nil, fmt.Errorf("%w: price and volatility index series are required", models.ErrDataUnavailable)
	}

	aligned := series.Align(input.Series, input.Secondary)
	if aligned.Len() < 2 {
		return nil, fmt.Errorf("%w: insufficient overlap between price and volatility index", models.ErrDataUnavailable)
	}

	var matches []models.MatchEvent
	for i := 1; i < aligned.Len(); i++ {
		vixLevel := aligned.Secondary[i].Close
		if vixLevel < params.VIXThreshold {
			continue
		}

		prevClose := aligned.Primary[i-1].Close
		if prevClose == 0 {
			continue
		}
		priceChange := (aligned.Primary[i].Close - prevClose) / prevClose * 100
		gapMove := (aligned.Primary[i].Open - prevClose) / prevClose * 100

		if !priceConditionMet(params, priceChange, gapMove) {
			continue
		}

		matches = append(matches, models.MatchEvent{
			Date:   aligned.Primary[i].Date,
			Kind:   e.Kind(),
			Detail: params.PriceCondition,
			Values: map[string]float64{
				"vix_level":    vixLevel,
				"price_change": priceChange,
				"gap_move":     gapMove,
			},
		})
	}

	summary := map[string]interface{}{
		"total_matches":   len(matches),
		"vix_threshold":   params.VIXThreshold,
		"price_condition": params.PriceCondition,
		"aligned_bars":    aligned.Len(),
	}

	e.logger.WithFields(logrus.Fields{
		"engine":  e.Kind(),
		"matches": len(matches),
		"aligned": aligned.Len(),
	}).Debug("Volatility scan complete")

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary}, nil
}

func priceConditionMet(params models.VolatilityParams, priceChange, gapMove float64) bool {
	threshold := math.Abs(params.PriceThreshold)
	switch params.PriceCondition {
	case "any":
		return true
	case "down":
		return priceChange <= -threshold
	case "up":
		return priceChange >= threshold
	case "gap_down":
		return gapMove <= -threshold
	default:
		return false
	}
}
