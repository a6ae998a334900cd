package forward

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
	"github.com/yourusername/market-patterns/internal/series"
)

var tableHeaders = []string{
	"Timeframe", "Avg Return", "Win Rate", "Best", "Worst", "Volatility", "Samples", "Ret/Vol",
}

// Calculator computes forward-looking statistics per timeframe across a
// match list. It is independent of the engines: any match list plus the
// series it was detected on works.
type Calculator struct {
	timeframes []Timeframe
	logger     *logrus.Logger
}

// NewCalculator creates a calculator; nil timeframes selects the default
// 11-timeframe ladder.
func NewCalculator(timeframes []Timeframe, logger *logrus.Logger) *Calculator {
	if len(timeframes) == 0 {
		timeframes = DefaultTimeframes()
	}
	return &Calculator{timeframes: timeframes, logger: logger}
}

// Compute evaluates forward returns for every match at every timeframe and
// aggregates a ranked performance table, best risk-adjusted timeframe
// first. An empty match list short-circuits to an explicit empty result.
func (c *Calculator) Compute(s models.MarketSeries, matches []models.MatchEvent) *models.ForwardReport {
	if len(matches) == 0 {
		return &models.ForwardReport{
			Results:          []models.MatchForwardReturns{},
			Summary:          map[string]interface{}{"total_matches": 0},
			PerformanceTable: models.PerformanceTable{Headers: tableHeaders, Rows: []models.PerformanceRow{}},
			Message:          "No matches to evaluate",
		}
	}

	index := series.BuildIndex(s)

	results := make([]models.MatchForwardReturns, 0, len(matches))
	byTimeframe := make(map[string][]float64, len(c.timeframes))
	var warnings []string
	skipped := 0

	for _, match := range matches {
		i, ok := index.Lookup(match.Date)
		if !ok {
			skipped++
			warning := fmt.Sprintf("match date %s not present in series, skipped", models.DateKey(match.Date))
			warnings = append(warnings, warning)
			c.logger.WithField("date", models.DateKey(match.Date)).Warn("Match date absent from series")
			continue
		}

		returns := make(map[string]*float64, len(c.timeframes))
		base := s[i].Close
		for _, tf := range c.timeframes {
			j := i + tf.Offset
			if j >= len(s) || base == 0 {
				returns[tf.Label] = nil // N/A: offset beyond series bounds
				continue
			}
			ret := (s[j].Close - base) / base * 100
			returns[tf.Label] = &ret
			byTimeframe[tf.Label] = append(byTimeframe[tf.Label], ret)
		}
		results = append(results, models.MatchForwardReturns{Date: match.Date, Returns: returns})
	}

	rows := make([]models.PerformanceRow, 0, len(c.timeframes))
	for _, tf := range c.timeframes {
		rows = append(rows, aggregate(tf.Label, byTimeframe[tf.Label]))
	}
	// Stable sort keeps the timeframe ladder order for tied ratios.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ReturnVolRatio > rows[j].ReturnVolRatio
	})

	summary := map[string]interface{}{
		"total_matches":     len(matches),
		"evaluated_matches": len(results),
		"skipped_matches":   skipped,
		"timeframes":        len(c.timeframes),
	}
	if len(rows) > 0 {
		summary["best_timeframe"] = rows[0].Timeframe
	}

	return &models.ForwardReport{
		Results:          results,
		Summary:          summary,
		PerformanceTable: models.PerformanceTable{Headers: tableHeaders, Rows: rows},
		Warnings:         warnings,
	}
}

func aggregate(label string, returns []float64) models.PerformanceRow {
	row := models.PerformanceRow{Timeframe: label, SampleCount: len(returns)}
	if len(returns) == 0 {
		return row
	}

	sum := 0.0
	wins := 0
	best := returns[0]
	worst := returns[0]
	for _, r := range returns {
		sum += r
		if r > 0 {
			wins++
		}
		if r > best {
			best = r
		}
		if r < worst {
			worst = r
		}
	}
	row.AvgReturn = sum / float64(len(returns))
	row.WinRate = float64(wins) / float64(len(returns))
	row.Best = best
	row.Worst = worst
	row.Volatility = populationStdev(returns, row.AvgReturn)
	if row.Volatility != 0 {
		row.ReturnVolRatio = row.AvgReturn / row.Volatility
	}
	return row
}

func populationStdev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}
