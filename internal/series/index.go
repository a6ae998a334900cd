package series

import (
	"time"

	"github.com/yourusername/market-patterns/internal/models"
)

// DateIndex maps normalized dates to series positions so trading-day
// offsets resolve by O(1) index arithmetic. Rebuilt per call; no locking
// needed.
type DateIndex map[string]int

// BuildIndex creates a date lookup for the series.
func BuildIndex(s models.MarketSeries) DateIndex {
	index := make(DateIndex, len(s))
	for i, point := range s {
		index[models.DateKey(point.Date)] = i
	}
	return index
}

// Lookup resolves a date to its series position.
func (d DateIndex) Lookup(t time.Time) (int, bool) {
	i, ok := d[models.DateKey(t)]
	return i, ok
}

// ResolveTradingDay snaps a nominal calendar date to the nearest actual
// trading day, searching forward up to maxForward calendar days. An exact
// match is preferred; otherwise the first trading day found wins.
func (d DateIndex) ResolveTradingDay(nominal time.Time, maxForward int) (int, bool) {
	if i, ok := d.Lookup(nominal); ok {
		return i, true
	}
	for offset := 1; offset <= maxForward; offset++ {
		if i, ok := d.Lookup(nominal.AddDate(0, 0, offset)); ok {
			return i, true
		}
	}
	return 0, false
}
