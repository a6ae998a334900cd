package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
)

const fallbackMomentum = "No sustained momentum runs found. Try a shorter window or a looser drawdown threshold."

// minGapDays suppresses near-duplicate overlapping signals: once a run is
// recorded, candidate windows ending within this many calendar days of the
// last match's end date are skipped.
const minGapDays = 30

// MomentumEngine finds windows where price holds one side of its simple
// moving average for the full window while the worst pullback against the
// trend stays within the threshold. The engine is registered once per
// direction; the direction always comes from the event kind, not the
// caller's parameter map.
type MomentumEngine struct {
	kind    models.EventKind
	mtype   models.MomentumType
	tracker *healthTracker
	logger  *logrus.Logger
}

// NewMomentumEngine creates a momentum engine for one direction.
func NewMomentumEngine(mtype models.MomentumType, logger *logrus.Logger) *MomentumEngine {
	kind := models.EventMomentumBullish
	if mtype == models.MomentumBearish {
		kind = models.EventMomentumBearish
	}
	return &MomentumEngine{kind: kind, mtype: mtype, tracker: newHealthTracker(), logger: logger}
}

func (e *MomentumEngine) Kind() models.EventKind      { return e.kind }
func (e *MomentumEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the scan inside the fault-isolation boundary.
func (e *MomentumEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackMomentum, func() (*models.EngineResult, error) {
		return e.detect(input)
	})
}

func (e *MomentumEngine) detect(input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.MomentumParams)
	if !ok {
		return nil, wrongParams(e.kind)
	}
	params.Type = e.mtype

	s := input.Series
	if len(s) == 0 {
		return nil, models.ErrEmptySeries
	}

	sma := simpleMovingAverage(s, params.SMAPeriod)

	var matches []models.MatchEvent
	var lastMatchEnd time.Time
	for i := params.SMAPeriod; i+params.Days-1 < len(s); i++ {
		endIdx := i + params.Days - 1
		endDate := s[endIdx].Date
		if !lastMatchEnd.IsZero() && withinCalendarDays(lastMatchEnd, endDate, minGapDays) {
			continue
		}

		match, ok := e.scanWindow(s, sma, i, endIdx, params)
		if !ok {
			continue
		}
		matches = append(matches, match)
		lastMatchEnd = endDate
	}

	summary := map[string]interface{}{
		"total_matches": len(matches),
		"momentum_type": string(params.Type),
		"sma_period":    params.SMAPeriod,
		"days":          params.Days,
		"threshold":     params.Threshold,
	}

	e.logger.WithFields(logrus.Fields{
		"engine":  e.kind,
		"matches": len(matches),
	}).Debug("Momentum scan complete")

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary}, nil
}

// scanWindow validates one candidate window. Bullish runs must close above
// the SMA at every point with the worst peak-to-trough drawdown bounded by
// the threshold; bearish runs mirror that below the SMA with the worst
// trough-to-peak rally bounded.
func (e *MomentumEngine) scanWindow(s models.MarketSeries, sma []float64, start, end int, params models.MomentumParams) (models.MatchEvent, bool) {
	peak := s[start].Close
	trough := s[start].Close
	worstDrawdown := 0.0
	worstRally := 0.0

	for j := start; j <= end; j++ {
		c := s[j].Close
		if params.Type == models.MomentumBullish {
			if c <= sma[j] {
				return models.MatchEvent{}, false
			}
			if c > peak {
				peak = c
			}
			if dd := (peak - c) / peak * 100; dd > worstDrawdown {
				worstDrawdown = dd
			}
		} else {
			if c >= sma[j] {
				return models.MatchEvent{}, false
			}
			if c < trough {
				trough = c
			}
			if rally := (c - trough) / trough * 100; rally > worstRally {
				worstRally = rally
			}
		}
	}

	excursion := worstDrawdown
	excursionKey := "max_drawdown"
	if params.Type == models.MomentumBearish {
		excursion = worstRally
		excursionKey = "max_rally"
	}
	if excursion > params.Threshold {
		return models.MatchEvent{}, false
	}

	startPrice := s[start].Close
	endPrice := s[end].Close
	windowReturn := 0.0
	if startPrice != 0 {
		windowReturn = (endPrice - startPrice) / startPrice * 100
	}

	return models.MatchEvent{
		Date:   s[end].Date,
		Kind:   e.kind,
		Detail: string(params.Type),
		Values: map[string]float64{
			"start_price":   startPrice,
			"end_price":     endPrice,
			"window_return": windowReturn,
			excursionKey:    excursion,
		},
	}, true
}

// simpleMovingAverage returns the trailing SMA; sma[j] covers the period
// closes ending at j and is only defined for j >= period-1.
func simpleMovingAverage(s models.MarketSeries, period int) []float64 {
	sma := make([]float64, len(s))
	if period <= 0 || len(s) < period {
		return sma
	}
	sum := 0.0
	for j, point := range s {
		sum += point.Close
		if j >= period {
			sum -= s[j-period].Close
		}
		if j >= period-1 {
			sma[j] = sum / float64(period)
		}
	}
	return sma
}

func withinCalendarDays(a, b time.Time, days int) bool {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}
