// Package series provides alignment and index helpers over market series.
package series

import (
	"sort"

	"github.com/yourusername/market-patterns/internal/models"
)

// AlignedPoint pairs the bars of two series that traded on the same date.
type AlignedPoint struct {
	Date  models.PricePoint
	Other models.PricePoint
}

// AlignedSeries is the inner join of two series on date, ascending.
type AlignedSeries struct {
	Primary   models.MarketSeries
	Secondary models.MarketSeries
}

// Align inner-joins two independently fetched series on date. The output
// contains only dates present in both inputs and is sorted ascending.
func Align(a, b models.MarketSeries) AlignedSeries {
	byDate := make(map[string]models.PricePoint, len(b))
	for _, point := range b {
		byDate[models.DateKey(point.Date)] = point
	}

	aligned := AlignedSeries{
		Primary:   make(models.MarketSeries, 0, len(a)),
		Secondary: make(models.MarketSeries, 0, len(a)),
	}
	for _, point := range a {
		other, ok := byDate[models.DateKey(point.Date)]
		if !ok {
			continue
		}
		aligned.Primary = append(aligned.Primary, point)
		aligned.Secondary = append(aligned.Secondary, other)
	}

	sort.SliceStable(aligned.Primary, func(i, j int) bool {
		return aligned.Primary[i].Date.Before(aligned.Primary[j].Date)
	})
	sort.SliceStable(aligned.Secondary, func(i, j int) bool {
		return aligned.Secondary[i].Date.Before(aligned.Secondary[j].Date)
	})
	return aligned
}

// Len returns the number of aligned dates.
func (a AlignedSeries) Len() int {
	return len(a.Primary)
}
