// Package metrics provides the centralized Prometheus registry for the
// pattern scanner.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EngineInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_patterns",
		Name:      "engine_invocations_total",
		Help:      "Total number of engine invocations",
	}, []string{"kind"})
	EngineFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_patterns",
		Name:      "engine_failures_total",
		Help:      "Total number of engine invocations that ended in a structured failure",
	}, []string{"kind"})
	MatchesDetectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_patterns",
		Name:      "matches_detected_total",
		Help:      "Total number of pattern matches detected",
	}, []string{"kind"})
	MatchesFilteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_patterns",
		Name:      "matches_filtered_total",
		Help:      "Total number of matches removed by contextual filters",
	})
	ScanJobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_patterns",
		Name:      "scan_jobs_total",
		Help:      "Total number of scheduled scan jobs executed",
	})
)

// Gauge metrics
var (
	RegimeCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "market_patterns",
		Name:      "regime_cache_entries",
		Help:      "Number of memoized regime tables currently cached",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "market_patterns",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end duration of one analysis request in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SeriesFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "market_patterns",
		Name:      "series_fetch_duration_seconds",
		Help:      "Duration of market data series fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(EngineInvocationsTotal)
		registry.MustRegister(EngineFailuresTotal)
		registry.MustRegister(MatchesDetectedTotal)
		registry.MustRegister(MatchesFilteredTotal)
		registry.MustRegister(ScanJobsTotal)
		registry.MustRegister(RegimeCacheEntries)
		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(SeriesFetchDuration)
	})
	return registry
}

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}
