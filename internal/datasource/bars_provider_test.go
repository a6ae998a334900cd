package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/market-patterns/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, testLogger())
}

const barsJSON = `{
	"symbol": "SPY",
	"bars": [
		{"date": "2024-03-05", "open": "510.10", "high": "512.00", "low": "508.00", "close": "511.25", "volume": 1200},
		{"date": "2024-03-04", "open": "508.00", "high": "511.00", "low": "507.50", "close": "510.10", "volume": 1100},
		{"date": "bogus", "open": "1", "high": "1", "low": "1", "close": "1", "volume": 1}
	]
}`

func TestFetchDailySeries(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"symbol": q.Get("symbol"),
			"start":  q.Get("start"),
			"end":    q.Get("end"),
			"apikey": q.Get("apikey"),
		}
		w.Write([]byte(barsJSON))
	}))
	defer server.Close()

	provider := NewBarsAPIProvider(server.URL, "secret", testClient(), testLogger())
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	series, err := provider.FetchDailySeries(context.Background(), "SPY", start, end)
	require.NoError(t, err)

	assert.Equal(t, "SPY", gotQuery["symbol"])
	assert.Equal(t, "2024-03-01", gotQuery["start"])
	assert.Equal(t, "2024-03-10", gotQuery["end"])
	assert.Equal(t, "secret", gotQuery["apikey"])

	// The malformed bar is skipped; the remaining two come back sorted.
	require.Len(t, series, 2)
	require.NoError(t, series.Validate())
	assert.Equal(t, "2024-03-04", models.DateKey(series[0].Date))
	assert.InDelta(t, 510.10, series[0].Close, 1e-9)
	assert.InDelta(t, 511.25, series[1].Close, 1e-9)
	assert.Equal(t, int64(1200), series[1].Volume)
}

func TestFetchDailySeriesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewBarsAPIProvider(server.URL, "", testClient(), testLogger())
	_, err := provider.FetchDailySeries(context.Background(), "XXXX", time.Now().AddDate(0, -1, 0), time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestFetchDailySeriesBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	provider := NewBarsAPIProvider(server.URL, "", testClient(), testLogger())
	_, err := provider.FetchDailySeries(context.Background(), "SPY", time.Now().AddDate(0, -1, 0), time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestParseBarRejectsBadPrices(t *testing.T) {
	_, err := parseBar(barPayload{Date: "2024-03-04", Open: "x", High: "1", Low: "1", Close: "1"})
	assert.Error(t, err)

	point, err := parseBar(barPayload{Date: "2024-03-04", Open: "1.5", High: "2", Low: "1", Close: "1.75", Volume: 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.75, point.Close, 1e-9)
}
