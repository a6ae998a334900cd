package models

import "time"

// HealthStatus tracks the operational state of one engine. Counters are
// monotonic for the process lifetime; they are never reset.
type HealthStatus struct {
	Healthy      bool      `json:"healthy"`
	SuccessCount uint64    `json:"success_count"`
	ErrorCount   uint64    `json:"error_count"`
	LastError    string    `json:"last_error,omitempty"`
	LastRun      time.Time `json:"last_run,omitempty"`
}

// SuccessRate returns the fraction of calls that succeeded, 1.0 when the
// engine has never run.
func (h HealthStatus) SuccessRate() float64 {
	total := h.SuccessCount + h.ErrorCount
	if total == 0 {
		return 1.0
	}
	return float64(h.SuccessCount) / float64(total)
}

// EngineHealth is the per-kind view exposed by the coordinator's aggregated
// health report.
type EngineHealth struct {
	Healthy     bool    `json:"healthy"`
	SuccessRate float64 `json:"success_rate"`
	LastError   string  `json:"last_error,omitempty"`
}
