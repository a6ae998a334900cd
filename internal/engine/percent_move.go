package engine

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
)

const fallbackPercentMove = "No qualifying moves found. Try a lower threshold, a longer window, or a wider date range."

// PercentMoveEngine scans every start index for a cumulative close-to-close
// move over a fixed number of trading days. Overlapping windows are all
// reported; there is no deduplication.
type PercentMoveEngine struct {
	tracker *healthTracker
	logger  *logrus.Logger
}

// NewPercentMoveEngine creates the percent-move engine.
func NewPercentMoveEngine(logger *logrus.Logger) *PercentMoveEngine {
	return &PercentMoveEngine{tracker: newHealthTracker(), logger: logger}
}

// Kind returns the event kind this engine serves.
func (e *PercentMoveEngine) Kind() models.EventKind { return models.EventPercentMove }

// Health returns a snapshot of the engine's health counters.
func (e *PercentMoveEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the scan inside the fault-isolation boundary.
func (e *PercentMoveEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackPercentMove, func() (*models.EngineResult, error) {
		return e.detect(input)
	})
}

func (e *PercentMoveEngine) detect(input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.PercentMoveParams)
	if !ok {
		return nil, wrongParams(e.Kind())
	}
	s := input.Series
	if len(s) == 0 {
		return nil, models.ErrEmptySeries
	}

	var matches []models.MatchEvent
	returnSum := 0.0
	for i := 0; i+params.Days < len(s); i++ {
		startPrice := s[i].Close
		if startPrice == 0 {
			continue
		}
		endPrice := s[i+params.Days].Close
		ret := (endPrice - startPrice) / startPrice * 100

		if !moveQualifies(ret, params.Direction, params.Threshold) {
			continue
		}

		sign := 1.0
		if ret < 0 {
			sign = -1.0
		}
		matches = append(matches, models.MatchEvent{
			Date: s[i+params.Days].Date,
			Kind: e.Kind(),
			Values: map[string]float64{
				"start_price": startPrice,
				"end_price":   endPrice,
				"return":      ret,
				"direction":   sign,
			},
		})
		returnSum += ret
	}

	summary := map[string]interface{}{
		"total_matches": len(matches),
		"days":          params.Days,
		"threshold":     params.Threshold,
		"direction":     string(params.Direction),
	}
	if len(matches) > 0 {
		summary["avg_return"] = returnSum / float64(len(matches))
	}

	e.logger.WithFields(logrus.Fields{
		"engine":  e.Kind(),
		"matches": len(matches),
		"bars":    len(s),
	}).Debug("Percent move scan complete")

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary}, nil
}

func moveQualifies(ret float64, direction models.MoveDirection, threshold float64) bool {
	switch direction {
	case models.MoveUp:
		return ret >= threshold
	case models.MoveDown:
		return ret <= -math.Abs(threshold)
	default:
		return math.Abs(ret) >= math.Abs(threshold)
	}
}
