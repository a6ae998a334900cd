// Package models defines the core data types shared across the scanner.
package models

import (
	"time"
)

// PricePoint is a single daily OHLCV bar. Immutable once fetched.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// MarketSeries is an ordered sequence of daily bars, strictly increasing by
// date with no duplicates. Offsets are trading-day offsets: "N days forward"
// means index+N, never calendar arithmetic.
type MarketSeries []PricePoint

// Len returns the number of bars in the series.
func (s MarketSeries) Len() int {
	return len(s)
}

// First returns the earliest bar. Zero value if the series is empty.
func (s MarketSeries) First() PricePoint {
	if len(s) == 0 {
		return PricePoint{}
	}
	return s[0]
}

// Last returns the most recent bar. Zero value if the series is empty.
func (s MarketSeries) Last() PricePoint {
	if len(s) == 0 {
		return PricePoint{}
	}
	return s[len(s)-1]
}

// Validate checks the strict date-ordering invariant.
func (s MarketSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i-1].Date.Before(s[i].Date) {
			return ErrSeriesNotSorted
		}
	}
	return nil
}

// DateKey normalizes a timestamp to the YYYY-MM-DD form used for series
// lookups and match identity.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
