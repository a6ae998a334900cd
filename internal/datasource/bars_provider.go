package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
)

// barPayload is the wire shape of one daily bar. Prices arrive as strings
// and are parsed through decimal to avoid float rounding on the boundary.
type barPayload struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume int64  `json:"volume"`
}

type barsResponse struct {
	Symbol string       `json:"symbol"`
	Bars   []barPayload `json:"bars"`
}

// BarsAPIProvider fetches daily OHLCV bars from an HTTP bars API.
type BarsAPIProvider struct {
	baseURL string
	apiKey  string
	client  *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewBarsAPIProvider creates a provider against the given base URL.
func NewBarsAPIProvider(baseURL, apiKey string, client *RateLimitedHTTPClient, logger *logrus.Logger) *BarsAPIProvider {
	return &BarsAPIProvider{baseURL: baseURL, apiKey: apiKey, client: client, logger: logger}
}

// Name returns the provider name.
func (p *BarsAPIProvider) Name() string { return "bars_api" }

// FetchDailySeries retrieves and validates daily bars for a symbol.
func (p *BarsAPIProvider) FetchDailySeries(ctx context.Context, symbol string, start, end time.Time) (models.MarketSeries, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("start", start.Format("2006-01-02"))
	query.Set("end", end.Format("2006-01-02"))
	query.Set("apikey", p.apiKey)

	resp, err := p.client.Get(ctx, fmt.Sprintf("%s/v1/daily?%s", p.baseURL, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", models.ErrDataUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", models.ErrDataUnavailable, symbol, resp.StatusCode)
	}

	var payload barsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", models.ErrDataUnavailable, symbol, err)
	}

	series := make(models.MarketSeries, 0, len(payload.Bars))
	for _, bar := range payload.Bars {
		point, err := parseBar(bar)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"symbol": symbol,
				"date":   bar.Date,
			}).Warn("Skipping malformed bar")
			continue
		}
		series = append(series, point)
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrDataUnavailable, symbol, err)
	}

	p.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(series),
	}).Debug("Fetched daily series")
	return series, nil
}

func parseBar(bar barPayload) (models.PricePoint, error) {
	date, err := time.Parse("2006-01-02", bar.Date)
	if err != nil {
		return models.PricePoint{}, fmt.Errorf("bad date %q: %w", bar.Date, err)
	}

	prices := make([]float64, 4)
	for i, raw := range []string{bar.Open, bar.High, bar.Low, bar.Close} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return models.PricePoint{}, fmt.Errorf("bad price %q: %w", raw, err)
		}
		prices[i], _ = d.Float64()
	}

	return models.PricePoint{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: bar.Volume,
	}, nil
}
