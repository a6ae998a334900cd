package models

import "time"

// MatchEvent is a single pattern occurrence produced by one engine call.
// Values carries the kind-specific numeric payload (return, open/close move,
// spread, vix level). Immutable once produced.
type MatchEvent struct {
	Date   time.Time          `json:"date"`
	Kind   EventKind          `json:"kind"`
	Values map[string]float64 `json:"values"`
	Detail string             `json:"detail,omitempty"`
}

// EngineResult is the outcome of a single engine invocation. Owned by the
// call that produced it and never shared across requests.
type EngineResult struct {
	Success  bool                   `json:"success"`
	Matches  []MatchEvent           `json:"matches"`
	Summary  map[string]interface{} `json:"summary"`
	Warnings []string               `json:"warnings,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Fallback string                 `json:"fallback,omitempty"`
}

// FailedResult builds the structured failure shape every engine error is
// converted into at the isolation boundary.
func FailedResult(err error, fallback string) *EngineResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &EngineResult{
		Success:  false,
		Matches:  nil,
		Summary:  map[string]interface{}{},
		Error:    msg,
		Fallback: fallback,
	}
}
