// Package datasource provides market data access for the scanner. The core
// engines consume already-fetched series; fetching lives here, at the
// coordinator boundary.
package datasource

import (
	"context"
	"time"

	"github.com/yourusername/market-patterns/internal/models"
)

// Provider fetches daily OHLCV series from an external market-data source.
type Provider interface {
	// FetchDailySeries retrieves daily bars for a symbol, sorted ascending
	// by date, within the inclusive date range.
	FetchDailySeries(ctx context.Context, symbol string, start, end time.Time) (models.MarketSeries, error)

	// Name returns the name of the data source.
	Name() string
}
