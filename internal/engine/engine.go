// Package engine implements the fault-isolated event detection engines and
// the coordinator that dispatches structured requests to them.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/market-patterns/internal/models"
)

// Input carries the data an engine scans. Secondary holds the second leg
// for sector-spread scans or the volatility index for volatility scans.
type Input struct {
	Series    models.MarketSeries
	Secondary models.MarketSeries
	Params    models.EngineParams
}

// Engine is the contract every detection algorithm implements. Analyze
// never panics and never returns a raw error: failures inside the algorithm
// are converted into a structured failure result at the isolation boundary
// and recorded in the engine's own health status.
type Engine interface {
	Kind() models.EventKind
	Analyze(ctx context.Context, input Input) *models.EngineResult
	Health() models.HealthStatus
}

// healthTracker owns an engine's HealthStatus. Counters are monotonic and
// guarded so concurrent invocations of the same engine stay consistent.
type healthTracker struct {
	mu     sync.Mutex
	status models.HealthStatus
}

func newHealthTracker() *healthTracker {
	return &healthTracker{status: models.HealthStatus{Healthy: true}}
}

// run executes a detection algorithm inside the fault-isolation wrapper.
// Panics and errors become failure results with a fallback suggestion; they
// never propagate to the coordinator.
func (t *healthTracker) run(fallback string, fn func() (*models.EngineResult, error)) (result *models.EngineResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("engine panic: %v", r)
			t.recordError(err)
			result = models.FailedResult(err, fallback)
		}
	}()

	res, err := fn()
	if err != nil {
		t.recordError(err)
		return models.FailedResult(err, fallback)
	}
	t.recordSuccess()
	return res
}

func (t *healthTracker) recordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.SuccessCount++
	t.status.Healthy = true
	t.status.LastRun = time.Now().UTC()
}

func (t *healthTracker) recordError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.ErrorCount++
	t.status.Healthy = false
	t.status.LastError = err.Error()
	t.status.LastRun = time.Now().UTC()
}

func (t *healthTracker) snapshot() models.HealthStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func wrongParams(kind models.EventKind) error {
	return fmt.Errorf("%w: %s received mismatched parameter type", models.ErrInvalidParams, kind)
}
