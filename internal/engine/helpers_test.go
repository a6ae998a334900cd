package engine

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/market-patterns/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailySeries builds n consecutive calendar-day bars starting at start,
// with closes taken from the supplied function.
func dailySeries(start time.Time, n int, closeAt func(i int) float64) models.MarketSeries {
	s := make(models.MarketSeries, 0, n)
	for i := 0; i < n; i++ {
		c := closeAt(i)
		s = append(s, models.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		})
	}
	return s
}

func flatSeries(start time.Time, n int, close float64) models.MarketSeries {
	return dailySeries(start, n, func(int) float64 { return close })
}
