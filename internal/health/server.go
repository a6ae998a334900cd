// Package health provides a lightweight HTTP server exposing liveness,
// readiness and per-engine health endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/models"
)

// EngineReporter exposes the coordinator's aggregated per-engine health.
type EngineReporter interface {
	Health() map[models.EventKind]models.EngineHealth
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Server is a lightweight HTTP server for health check endpoints.
type Server struct {
	serviceName string
	port        int
	server      *http.Server
	logger      *logrus.Logger
	reporter    EngineReporter
	mu          sync.RWMutex
	ready       bool
}

// NewServer creates a health server wired to the engine reporter.
func NewServer(serviceName string, port int, reporter EngineReporter, logger *logrus.Logger) *Server {
	return &Server{
		serviceName: serviceName,
		port:        port,
		reporter:    reporter,
		logger:      logger,
	}
}

// SetReady flips the readiness flag once startup is complete.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/engines", s.handleEngines)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.port).Info("Health server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, status, HealthResponse{Status: state, Service: s.serviceName})
}

// handleEngines exposes the per-engine success rate for monitoring.
func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	report := s.reporter.Health()

	status := http.StatusOK
	for _, engine := range report {
		if !engine.Healthy {
			status = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, status, report)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
