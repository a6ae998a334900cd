package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/market-patterns/internal/datasource"
	"github.com/yourusername/market-patterns/internal/forward"
	"github.com/yourusername/market-patterns/internal/metrics"
	"github.com/yourusername/market-patterns/internal/models"
	"github.com/yourusername/market-patterns/internal/regime"
)

// AnalysisResponse is the full output of one coordinated request: the
// engine result plus (for series-backed kinds) the forward-return report.
type AnalysisResponse struct {
	Request models.AnalysisRequest `json:"request"`
	Engine  *models.EngineResult   `json:"engine"`
	Forward *models.ForwardReport  `json:"forward,omitempty"`
}

// Coordinator dispatches structured requests to the engine registry,
// applies contextual filters to the matches, and runs the forward-return
// stage. The registry is built explicitly and injected; there is no
// package-level engine state.
type Coordinator struct {
	engines      map[models.EventKind]Engine
	provider     datasource.Provider
	filters      *regime.Service
	forward      *forward.Calculator
	historyYears int
	logger       *logrus.Logger
}

// NewRegistry constructs one engine instance per event kind.
func NewRegistry(provider datasource.Provider, logger *logrus.Logger) map[models.EventKind]Engine {
	engines := []Engine{
		NewPercentMoveEngine(logger),
		NewReversalEngine(logger),
		NewSectorSpreadEngine(logger),
		NewMomentumEngine(models.MomentumBullish, logger),
		NewMomentumEngine(models.MomentumBearish, logger),
		NewVolatilityEngine(logger),
		NewMacroEngine(logger),
		NewTOYEngine(provider, logger),
	}
	registry := make(map[models.EventKind]Engine, len(engines))
	for _, e := range engines {
		registry[e.Kind()] = e
	}
	return registry
}

// NewCoordinator creates the coordinator over an explicit engine registry.
func NewCoordinator(
	registry map[models.EventKind]Engine,
	provider datasource.Provider,
	filters *regime.Service,
	forwardCalc *forward.Calculator,
	historyYears int,
	logger *logrus.Logger,
) *Coordinator {
	if historyYears <= 0 {
		historyYears = 10
	}
	return &Coordinator{
		engines:      registry,
		provider:     provider,
		filters:      filters,
		forward:      forwardCalc,
		historyYears: historyYears,
		logger:       logger,
	}
}

// Analyze runs one request end to end. Validation and unknown-kind errors
// surface immediately; everything downstream of engine dispatch is a
// structured result.
func (c *Coordinator) Analyze(ctx context.Context, req models.AnalysisRequest) (*AnalysisResponse, error) {
	started := time.Now()
	defer func() {
		metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	}()

	eng, ok := c.engines[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownEventKind, req.Kind)
	}
	if req.Params == nil {
		return nil, fmt.Errorf("%w: missing parameters for %s", models.ErrInvalidParams, req.Kind)
	}
	req.Params = c.normalizeMomentumParams(req)
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	input, err := c.buildInput(ctx, req)
	if err != nil {
		return nil, err
	}

	metrics.EngineInvocationsTotal.WithLabelValues(string(req.Kind)).Inc()
	result := eng.Analyze(ctx, input)
	if !result.Success {
		metrics.EngineFailuresTotal.WithLabelValues(string(req.Kind)).Inc()
		c.logger.WithFields(logrus.Fields{
			"request_id": req.ID,
			"kind":       req.Kind,
			"error":      result.Error,
		}).Error("Engine returned failure result")
		return &AnalysisResponse{Request: req, Engine: result}, nil
	}
	metrics.MatchesDetectedTotal.WithLabelValues(string(req.Kind)).Add(float64(len(result.Matches)))

	narrowed, err := c.filters.Apply(result.Matches, req.ContextFilters, req.DayFilter, req.MonthFilter)
	if err != nil {
		return nil, err
	}
	if removed := len(result.Matches) - len(narrowed); removed > 0 {
		metrics.MatchesFilteredTotal.Add(float64(removed))
	}
	result.Matches = narrowed

	response := &AnalysisResponse{Request: req, Engine: result}
	if seriesBacked(req.Kind) {
		response.Forward = c.forward.Compute(input.Series, result.Matches)
	}

	c.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"kind":       req.Kind,
		"ticker":     req.Ticker,
		"matches":    len(result.Matches),
		"duration":   time.Since(started),
	}).Info("Analysis complete")
	return response, nil
}

// Health aggregates the per-kind engine health view.
func (c *Coordinator) Health() map[models.EventKind]models.EngineHealth {
	report := make(map[models.EventKind]models.EngineHealth, len(c.engines))
	for kind, eng := range c.engines {
		status := eng.Health()
		report[kind] = models.EngineHealth{
			Healthy:     status.Healthy,
			SuccessRate: status.SuccessRate(),
			LastError:   status.LastError,
		}
	}
	return report
}

// normalizeMomentumParams forces the momentum direction implied by the
// requested event kind over whatever the caller set.
func (c *Coordinator) normalizeMomentumParams(req models.AnalysisRequest) models.EngineParams {
	params, ok := req.Params.(models.MomentumParams)
	if !ok {
		return req.Params
	}
	switch req.Kind {
	case models.EventMomentumBullish:
		params.Type = models.MomentumBullish
	case models.EventMomentumBearish:
		params.Type = models.MomentumBearish
	}
	return params
}

// buildInput fetches the series the engine needs. TOY fetches its own
// extended history internally and macro needs no series; both bypass the
// generic single-series path. The two dual-series kinds fetch both legs in
// parallel and join once both arrive.
func (c *Coordinator) buildInput(ctx context.Context, req models.AnalysisRequest) (Input, error) {
	input := Input{Params: req.Params}

	switch req.Kind {
	case models.EventTOYSeasonal, models.EventMacroSignal:
		return input, nil

	case models.EventSectorSpread:
		params, ok := req.Params.(models.SectorSpreadParams)
		if !ok {
			return input, wrongParams(req.Kind)
		}
		primary, secondary, err := c.fetchPair(ctx, params.SymbolA, params.SymbolB)
		if err != nil {
			return input, err
		}
		input.Series = primary
		input.Secondary = secondary
		return input, nil

	case models.EventVolatilitySpike:
		params, ok := req.Params.(models.VolatilityParams)
		if !ok {
			return input, wrongParams(req.Kind)
		}
		primary, secondary, err := c.fetchPair(ctx, req.Ticker, params.IndexSymbol)
		if err != nil {
			return input, err
		}
		input.Series = primary
		input.Secondary = secondary
		return input, nil

	default:
		s, err := c.fetchSeries(ctx, req.Ticker)
		if err != nil {
			return input, err
		}
		input.Series = s
		return input, nil
	}
}

func (c *Coordinator) fetchSeries(ctx context.Context, symbol string) (models.MarketSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: ticker is required", models.ErrInvalidParams)
	}
	started := time.Now()
	end := time.Now().UTC()
	start := end.AddDate(-c.historyYears, 0, 0)
	s, err := c.provider.FetchDailySeries(ctx, symbol, start, end)
	metrics.SeriesFetchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no series for %s", models.ErrDataUnavailable, symbol)
	}
	return s, nil
}

func (c *Coordinator) fetchPair(ctx context.Context, symbolA, symbolB string) (models.MarketSeries, models.MarketSeries, error) {
	var primary, secondary models.MarketSeries
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s, err := c.fetchSeries(groupCtx, symbolA)
		primary = s
		return err
	})
	group.Go(func() error {
		s, err := c.fetchSeries(groupCtx, symbolB)
		secondary = s
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return primary, secondary, nil
}

func seriesBacked(kind models.EventKind) bool {
	switch kind {
	case models.EventTOYSeasonal, models.EventMacroSignal:
		return false
	}
	return true
}
