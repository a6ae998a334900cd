package health

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/market-patterns/internal/models"
)

type fakeReporter struct {
	report map[models.EventKind]models.EngineHealth
}

func (f *fakeReporter) Health() map[models.EventKind]models.EngineHealth {
	return f.report
}

func newTestServer(report map[models.EventKind]models.EngineHealth) *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer("market-patterns", 0, &fakeReporter{report: report}, log)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "market-patterns", body.Service)
}

func TestHandleReadyFlipsWithFlag(t *testing.T) {
	s := newTestServer(nil)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleEnginesHealthy(t *testing.T) {
	s := newTestServer(map[models.EventKind]models.EngineHealth{
		models.EventPercentMove: {Healthy: true, SuccessRate: 1.0},
		models.EventReversal:    {Healthy: true, SuccessRate: 0.9},
	})

	rec := httptest.NewRecorder()
	s.handleEngines(rec, httptest.NewRequest(http.MethodGet, "/engines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var report map[models.EventKind]models.EngineHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report, 2)
}

func TestHandleEnginesUnhealthy(t *testing.T) {
	s := newTestServer(map[models.EventKind]models.EngineHealth{
		models.EventPercentMove: {Healthy: true, SuccessRate: 1.0},
		models.EventReversal:    {Healthy: false, SuccessRate: 0.2, LastError: "empty series"},
	})

	rec := httptest.NewRecorder()
	s.handleEngines(rec, httptest.NewRequest(http.MethodGet, "/engines", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
