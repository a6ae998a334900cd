package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
	"github.com/yourusername/market-patterns/internal/series"
)

const fallbackSectorSpread = "No spread divergence found between the two sectors. Try a smaller threshold or a longer window."

// SectorSpreadEngine compares the returns of two independently fetched
// series over the same trading-day window. The series are inner-joined on
// date before scanning.
type SectorSpreadEngine struct {
	tracker *healthTracker
	logger  *logrus.Logger
}

// NewSectorSpreadEngine creates the sector-spread engine.
func NewSectorSpreadEngine(logger *logrus.Logger) *SectorSpreadEngine {
	return &SectorSpreadEngine{tracker: newHealthTracker(), logger: logger}
}

func (e *SectorSpreadEngine) Kind() models.EventKind      { return models.EventSectorSpread }
func (e *SectorSpreadEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the scan inside the fault-isolation boundary.
func (e *SectorSpreadEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackSectorSpread, func() (*models.EngineResult, error) {
		return e.detect(input)
	})
}

func (e *SectorSpreadEngine) detect(input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.SectorSpreadParams)
	if !ok {
		return nil, wrongParams(e.Kind())
	}
	if len(input.Series) == 0 || len(input.Secondary) == 0 {
		return nil, fmt.Errorf("%w: both sector series are required", models.ErrDataUnavailable)
	}

	aligned := series.Align(input.Series, input.Secondary)
	if aligned.Len() == 0 {
		return nil, fmt.Errorf("%w: no overlapping trading days between %s and %s",
			models.ErrDataUnavailable, params.SymbolA, params.SymbolB)
	}

	var matches []models.MatchEvent
	for i := 0; i+params.Days < aligned.Len(); i++ {
		startA := aligned.Primary[i].Close
		startB := aligned.Secondary[i].Close
		if startA == 0 || startB == 0 {
			continue
		}
		retA := (aligned.Primary[i+params.Days].Close - startA) / startA * 100
		retB := (aligned.Secondary[i+params.Days].Close - startB) / startB * 100
		spread := retA - retB
		if math.Abs(spread) < math.Abs(params.Threshold) {
			continue
		}

		outperformer := params.SymbolA
		if retB > retA {
			outperformer = params.SymbolB
		}
		matches = append(matches, models.MatchEvent{
			Date:   aligned.Primary[i+params.Days].Date,
			Kind:   e.Kind(),
			Detail: outperformer,
			Values: map[string]float64{
				"return_a": retA,
				"return_b": retB,
				"spread":   spread,
			},
		})
	}

	summary := map[string]interface{}{
		"total_matches": len(matches),
		"symbol_a":      params.SymbolA,
		"symbol_b":      params.SymbolB,
		"days":          params.Days,
		"threshold":     params.Threshold,
		"aligned_bars":  aligned.Len(),
	}

	e.logger.WithFields(logrus.Fields{
		"engine":  e.Kind(),
		"matches": len(matches),
		"aligned": aligned.Len(),
	}).Debug("Sector spread scan complete")

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary}, nil
}
