package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/datasource"
	"github.com/yourusername/market-patterns/internal/forward"
	"github.com/yourusername/market-patterns/internal/models"
	"github.com/yourusername/market-patterns/internal/series"
)

const fallbackTOY = "Turn-of-year analysis produced no usable periods. Check the ticker and the year range."

// maxBoundarySnapDays bounds the forward search when snapping a nominal
// window boundary to an actual trading day.
const maxBoundarySnapDays = 10

// defaultForwardDays are the forward offsets evaluated from each window end
// when the caller does not supply their own.
var defaultForwardDays = []int{1, 5, 21, 63, 252}

// TOYEngine runs the turn-of-year seasonal analysis. It fetches its own
// extended history through the provider rather than relying on the
// coordinator's single-series path: the window can cross a year boundary
// and the forward offsets reach up to a year beyond the last window.
type TOYEngine struct {
	provider datasource.Provider
	tracker  *healthTracker
	logger   *logrus.Logger
}

// NewTOYEngine creates the turn-of-year engine.
func NewTOYEngine(provider datasource.Provider, logger *logrus.Logger) *TOYEngine {
	return &TOYEngine{provider: provider, tracker: newHealthTracker(), logger: logger}
}

func (e *TOYEngine) Kind() models.EventKind      { return models.EventTOYSeasonal }
func (e *TOYEngine) Health() models.HealthStatus { return e.tracker.snapshot() }

// Analyze runs the analysis inside the fault-isolation boundary.
func (e *TOYEngine) Analyze(ctx context.Context, input Input) *models.EngineResult {
	return e.tracker.run(fallbackTOY, func() (*models.EngineResult, error) {
		return e.analyze(ctx, input)
	})
}

func (e *TOYEngine) analyze(ctx context.Context, input Input) (*models.EngineResult, error) {
	params, ok := input.Params.(models.TOYParams)
	if !ok {
		return nil, wrongParams(e.Kind())
	}

	startMonth, startDay, err := models.ParseMonthDay(params.TOYStart)
	if err != nil {
		return nil, err
	}
	endMonth, endDay, err := models.ParseMonthDay(params.TOYEnd)
	if err != nil {
		return nil, err
	}

	s, err := e.fetchHistory(ctx, params)
	if err != nil {
		return nil, err
	}
	index := series.BuildIndex(s)

	forwardDays := params.ForwardDays
	if len(forwardDays) == 0 {
		forwardDays = defaultForwardDays
	}

	var periods []models.TOYPeriod
	var matches []models.MatchEvent
	var warnings []string
	for year := params.FirstYear; year <= params.LastYear; year++ {
		period, warning := e.resolvePeriod(s, index, year, startMonth, startDay, endMonth, endDay, params.Threshold, forwardDays)
		if warning != "" {
			// Skipping a year is non-fatal; the remaining years still run.
			warnings = append(warnings, warning)
			e.logger.WithFields(logrus.Fields{"year": year, "reason": warning}).Warn("Skipping turn-of-year period")
			continue
		}
		periods = append(periods, period)
		matches = append(matches, models.MatchEvent{
			Date:   period.WindowEndDate,
			Kind:   e.Kind(),
			Detail: string(period.Signal),
			Values: map[string]float64{
				"toy_return": period.TOYReturn,
				"year":       float64(period.Year),
			},
		})
	}

	summary := summarizePeriods(periods)
	summary["first_year"] = params.FirstYear
	summary["last_year"] = params.LastYear
	summary["skipped_years"] = len(warnings)
	summary["periods"] = periods

	return &models.EngineResult{Success: true, Matches: matches, Summary: summary, Warnings: warnings}, nil
}

func (e *TOYEngine) fetchHistory(ctx context.Context, params models.TOYParams) (models.MarketSeries, error) {
	// History must cover the last window's end year plus the longest forward
	// offset, roughly one extra calendar year.
	start := time.Date(params.FirstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(params.LastYear+2, time.December, 31, 0, 0, 0, 0, time.UTC)

	s, err := e.provider.FetchDailySeries(ctx, params.Ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no history for %s", models.ErrDataUnavailable, params.Ticker)
	}
	return s, nil
}

// resolvePeriod walks one year through the boundary-resolution state
// machine. The terminal state is either a TOYPeriod or a skip reason.
func (e *TOYEngine) resolvePeriod(
	s models.MarketSeries,
	index series.DateIndex,
	year int,
	startMonth time.Month, startDay int,
	endMonth time.Month, endDay int,
	threshold float64,
	forwardDays []int,
) (models.TOYPeriod, string) {
	endYear := year
	if endMonth < startMonth {
		// Calendar crossover, e.g. a Nov start with a Jan end lands in the
		// following year.
		endYear = year + 1
	}

	nominalStart := time.Date(year, startMonth, startDay, 0, 0, 0, 0, time.UTC)
	nominalEnd := time.Date(endYear, endMonth, endDay, 0, 0, 0, 0, time.UTC)

	startIdx, ok := index.ResolveTradingDay(nominalStart, maxBoundarySnapDays)
	if !ok {
		return models.TOYPeriod{}, fmt.Sprintf("year %d: no trading day within %d days of %s",
			year, maxBoundarySnapDays, models.DateKey(nominalStart))
	}
	endIdx, ok := index.ResolveTradingDay(nominalEnd, maxBoundarySnapDays)
	if !ok {
		return models.TOYPeriod{}, fmt.Sprintf("year %d: no trading day within %d days of %s",
			year, maxBoundarySnapDays, models.DateKey(nominalEnd))
	}

	startClose := s[startIdx].Close
	if startClose == 0 || startIdx >= endIdx {
		return models.TOYPeriod{}, fmt.Sprintf("year %d: unusable window boundaries", year)
	}
	endClose := s[endIdx].Close
	toyReturn := (endClose - startClose) / startClose * 100

	signal := models.SignalNeutral
	switch {
	case toyReturn >= threshold:
		signal = models.SignalBullish
	case toyReturn < 0:
		signal = models.SignalBearish
	}

	forwardReturns := make(map[string]*float64, len(forwardDays))
	for _, offset := range forwardDays {
		label := forward.LabelForOffset(offset)
		j := endIdx + offset
		if j >= len(s) {
			forwardReturns[label] = nil
			continue
		}
		ret := (s[j].Close - endClose) / endClose * 100
		forwardReturns[label] = &ret
	}

	return models.TOYPeriod{
		Year:            year,
		WindowStartDate: s[startIdx].Date,
		WindowEndDate:   s[endIdx].Date,
		TOYReturn:       toyReturn,
		Signal:          signal,
		ForwardReturns:  forwardReturns,
	}, ""
}

// summarizePeriods aggregates signal counts, per-class average returns,
// best/worst years and forward performance by signal over the non-skipped
// years only.
func summarizePeriods(periods []models.TOYPeriod) map[string]interface{} {
	summary := map[string]interface{}{
		"total_periods": len(periods),
	}
	if len(periods) == 0 {
		return summary
	}

	counts := map[models.Signal]int{}
	returnSums := map[models.Signal]float64{}
	forwardSums := map[models.Signal]map[string]float64{}
	forwardCounts := map[models.Signal]map[string]int{}

	best := periods[0]
	worst := periods[0]
	for _, p := range periods {
		counts[p.Signal]++
		returnSums[p.Signal] += p.TOYReturn
		if p.TOYReturn > best.TOYReturn {
			best = p
		}
		if p.TOYReturn < worst.TOYReturn {
			worst = p
		}

		if forwardSums[p.Signal] == nil {
			forwardSums[p.Signal] = map[string]float64{}
			forwardCounts[p.Signal] = map[string]int{}
		}
		for label, ret := range p.ForwardReturns {
			if ret == nil {
				continue
			}
			forwardSums[p.Signal][label] += *ret
			forwardCounts[p.Signal][label]++
		}
	}

	total := float64(len(periods))
	avgBySignal := map[string]float64{}
	for signal, count := range counts {
		avgBySignal[string(signal)] = returnSums[signal] / float64(count)
	}
	forwardBySignal := map[string]map[string]float64{}
	for signal, sums := range forwardSums {
		avgs := map[string]float64{}
		for label, sum := range sums {
			avgs[label] = sum / float64(forwardCounts[signal][label])
		}
		forwardBySignal[string(signal)] = avgs
	}

	summary["bullish_count"] = counts[models.SignalBullish]
	summary["bearish_count"] = counts[models.SignalBearish]
	summary["neutral_count"] = counts[models.SignalNeutral]
	summary["bullish_rate"] = float64(counts[models.SignalBullish]) / total
	summary["bearish_rate"] = float64(counts[models.SignalBearish]) / total
	summary["neutral_rate"] = float64(counts[models.SignalNeutral]) / total
	summary["avg_return_by_signal"] = avgBySignal
	summary["best_year"] = best.Year
	summary["best_return"] = best.TOYReturn
	summary["worst_year"] = worst.Year
	summary["worst_return"] = worst.TOYReturn
	summary["forward_performance_by_signal"] = forwardBySignal
	return summary
}
