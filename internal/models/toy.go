package models

import "time"

// Signal classifies a turn-of-year window's realized return.
type Signal string

const (
	SignalBullish Signal = "Bullish"
	SignalBearish Signal = "Bearish"
	SignalNeutral Signal = "Neutral"
)

// TOYPeriod is the per-year outcome of the turn-of-year analysis. Forward
// returns map a timeframe label to a return; nil means the offset fell
// beyond the end of the series.
type TOYPeriod struct {
	Year            int                 `json:"year"`
	WindowStartDate time.Time           `json:"window_start_date"`
	WindowEndDate   time.Time           `json:"window_end_date"`
	TOYReturn       float64             `json:"toy_return"`
	Signal          Signal              `json:"signal"`
	ForwardReturns  map[string]*float64 `json:"forward_returns"`
}
