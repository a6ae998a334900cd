package models

import "time"

// PerformanceRow aggregates forward returns for one timeframe across all
// matches. Derived per call, never persisted.
type PerformanceRow struct {
	Timeframe      string  `json:"timeframe"`
	AvgReturn      float64 `json:"avg_return"`
	WinRate        float64 `json:"win_rate"`
	Best           float64 `json:"best"`
	Worst          float64 `json:"worst"`
	Volatility     float64 `json:"volatility"`
	SampleCount    int     `json:"sample_count"`
	ReturnVolRatio float64 `json:"return_vol_ratio"`
}

// PerformanceTable is the ranked per-timeframe view, best risk-adjusted
// timeframe first.
type PerformanceTable struct {
	Headers []string         `json:"headers"`
	Rows    []PerformanceRow `json:"rows"`
}

// MatchForwardReturns holds per-timeframe forward returns for a single
// match. A nil entry means the offset fell beyond the series bounds (N/A).
type MatchForwardReturns struct {
	Date    time.Time           `json:"date"`
	Returns map[string]*float64 `json:"returns"`
}

// ForwardReport is the full output of the forward-returns calculation.
type ForwardReport struct {
	Results          []MatchForwardReturns  `json:"results"`
	Summary          map[string]interface{} `json:"summary"`
	PerformanceTable PerformanceTable       `json:"performance_table"`
	Warnings         []string               `json:"warnings,omitempty"`
	Message          string                 `json:"message,omitempty"`
}
