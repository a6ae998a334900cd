package engine

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
)

const fallbackReversal = "No intraday reversals matched. Try lowering the open or close thresholds."

// ReversalEngine finds days that gap in one direction at the open and close
// in the other: a gap up that sells off (bearish) or a gap down that
// recovers (bullish). Moves are measured in percent.
type ReversalEngine struct {
	tracker *healthTracker
	logger  *logrus.Logger
}

// NewReversalEngine creates the reversal engine.
func NewReversalEngine(logger *logrus.Logger) *ReversalEngine {
	return &ReversalEngine{tracker: newHealthTracker(), logger: logger}
}

func (e *ReversalEngine) Kind() models.EventKind      { return models.EventReversal }
func (e *ReversalEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the scan inside the fault-isolation boundary.
func (e *ReversalEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackReversal, func() (*models.EngineResult, error) {
		return e.detect(input)
	})
}

func (e *ReversalEngine) detect(input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.ReversalParams)
	if !ok {
		return nil, wrongParams(e.Kind())
	}
	s := input.Series
	if len(s) == 0 {
		return nil, models.ErrEmptySeries
	}

	var matches []models.MatchEvent
	bearish := 0
	bullish := 0
	for i := 1; i < len(s); i++ {
		prevClose := s[i-1].Close
		open := s[i].Open
		if prevClose == 0 || open == 0 {
			continue
		}
		openMove := (open - prevClose) / prevClose * 100
		closeMove := (s[i].Close - open) / open * 100

		var detail string
		switch {
		case openMove >= params.OpenThreshold && closeMove <= -params.CloseThreshold:
			detail = "bearish_reversal"
			bearish++
		case openMove <= -params.OpenThreshold && closeMove >= params.CloseThreshold:
			detail = "bullish_reversal"
			bullish++
		default:
			continue
		}

		matches = append(matches, models.MatchEvent{
			Date:   s[i].Date,
			Kind:   e.Kind(),
			Detail: detail,
			Values: map[string]float64{
				"open_move":  openMove,
				"close_move": closeMove,
				"magnitude":  math.Abs(openMove + closeMove),
			},
		})
	}

	summary := map[string]interface{}{
		"total_matches":   len(matches),
		"bearish_count":   bearish,
		"bullish_count":   bullish,
		"open_threshold":  params.OpenThreshold,
		"close_threshold": params.CloseThreshold,
	}

	e.logger.WithFields(logrus.Fields{
		"engine":  e.Kind(),
		"matches": len(matches),
	}).Debug("Reversal scan complete")

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary}, nil
}
