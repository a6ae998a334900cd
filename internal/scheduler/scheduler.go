// Package scheduler runs recurring watchlist scans on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/market-patterns/internal/config"
	"github.com/yourusername/market-patterns/internal/engine"
	"github.com/yourusername/market-patterns/internal/metrics"
	"github.com/yourusername/market-patterns/internal/models"
)

// Scheduler periodically re-runs the configured watchlist scans through the
// coordinator and hands results to the sink.
type Scheduler struct {
	cron        *cron.Cron
	coordinator *engine.Coordinator
	jobs        []config.ScanJobConfig
	schedule    string
	sink        models.ResultSink
	logger      *logrus.Logger
}

// New creates a scheduler; a nil sink defaults to logging results only.
func New(coordinator *engine.Coordinator, cfg config.SchedulerConfig, sink models.ResultSink, logger *logrus.Logger) *Scheduler {
	if sink == nil {
		sink = &LoggingSink{logger: logger}
	}
	return &Scheduler{
		cron:        cron.New(),
		coordinator: coordinator,
		jobs:        cfg.Jobs,
		schedule:    cfg.Schedule,
		sink:        sink,
		logger:      logger,
	}
}

// Start registers all watchlist jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(s.schedule, func() { s.runJob(ctx, job) }); err != nil {
			return fmt.Errorf("failed to schedule scan for %s: %w", job.Ticker, err)
		}
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"jobs":     len(s.jobs),
		"schedule": s.schedule,
	}).Info("Scan scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scan scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job config.ScanJobConfig) {
	metrics.ScanJobsTotal.Inc()

	req, err := buildRequest(job)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", job.Ticker).Error("Invalid scan job")
		return
	}

	response, err := s.coordinator.Analyze(ctx, req)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"ticker": job.Ticker,
			"kind":   job.Kind,
		}).Error("Scheduled scan failed")
		return
	}

	if err := s.sink.SaveReport(ctx, req, response.Engine, response.Forward); err != nil {
		s.logger.WithError(err).Warn("Failed to persist scan result")
	}
}

// buildRequest maps a watchlist job onto the parameter union for its kind.
func buildRequest(job config.ScanJobConfig) (models.AnalysisRequest, error) {
	kind := models.EventKind(job.Kind)
	var params models.EngineParams

	switch kind {
	case models.EventPercentMove:
		direction := models.MoveDirection(job.Direction)
		if direction == "" {
			direction = models.MoveBoth
		}
		params = models.PercentMoveParams{Days: job.Days, Threshold: job.Threshold, Direction: direction}
	case models.EventReversal:
		params = models.ReversalParams{OpenThreshold: job.Threshold, CloseThreshold: job.Threshold / 2}
	case models.EventMomentumBullish, models.EventMomentumBearish:
		mtype := models.MomentumBullish
		if kind == models.EventMomentumBearish {
			mtype = models.MomentumBearish
		}
		params = models.MomentumParams{SMAPeriod: 20, Days: job.Days, Type: mtype, Threshold: job.Threshold}
	default:
		return models.AnalysisRequest{}, fmt.Errorf("%w: %q is not schedulable", models.ErrUnknownEventKind, job.Kind)
	}

	return models.NewAnalysisRequest(kind, job.Ticker, params), nil
}

// LoggingSink satisfies models.ResultSink by logging scan summaries.
// Durable storage lives outside this module.
type LoggingSink struct {
	logger *logrus.Logger
}

// NewLoggingSink creates the logging sink.
func NewLoggingSink(logger *logrus.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

// SaveReport logs the outcome of one scan.
func (l *LoggingSink) SaveReport(ctx context.Context, req models.AnalysisRequest, result *models.EngineResult, report *models.ForwardReport) error {
	fields := logrus.Fields{
		"request_id": req.ID,
		"kind":       req.Kind,
		"ticker":     req.Ticker,
		"success":    result.Success,
		"matches":    len(result.Matches),
	}
	if report != nil && len(report.PerformanceTable.Rows) > 0 {
		fields["best_timeframe"] = report.PerformanceTable.Rows[0].Timeframe
	}
	l.logger.WithFields(fields).Info("Scan result")
	return nil
}
