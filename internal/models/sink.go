package models

import "context"

// ResultSink is the persistence collaborator boundary. Storage of analysis
// output lives outside this module; callers inject an implementation when
// they want results kept.
type ResultSink interface {
	SaveReport(ctx context.Context, req AnalysisRequest, result *EngineResult, report *ForwardReport) error
}
