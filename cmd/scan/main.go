// Package main provides the one-shot analysis CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/market-patterns/internal/config"
	"github.com/yourusername/market-patterns/internal/datasource"
	"github.com/yourusername/market-patterns/internal/engine"
	"github.com/yourusername/market-patterns/internal/forward"
	"github.com/yourusername/market-patterns/internal/logger"
	"github.com/yourusername/market-patterns/internal/models"
	"github.com/yourusername/market-patterns/internal/regime"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		kind       = flag.String("kind", "percent_move", "Event kind to scan for")
		ticker     = flag.String("ticker", "", "Ticker symbol")
		days       = flag.Int("days", 5, "Trading-day window length")
		threshold  = flag.Float64("threshold", 5.0, "Match threshold (percent)")
		direction  = flag.String("direction", "both", "Percent move direction: up, down, both")

		openThreshold  = flag.Float64("open-threshold", 2.0, "Reversal open move threshold (percent)")
		closeThreshold = flag.Float64("close-threshold", 1.0, "Reversal close move threshold (percent)")

		smaPeriod = flag.Int("sma-period", 20, "Momentum SMA period")

		symbolA = flag.String("symbol-a", "", "Sector spread: first symbol")
		symbolB = flag.String("symbol-b", "", "Sector spread: second symbol")

		indexSymbol    = flag.String("index-symbol", "VIX", "Volatility index symbol")
		priceCondition = flag.String("price-condition", "any", "Volatility price condition: any, up, down, gap_down")

		cpi             = flag.Float64("cpi", 0, "Macro: current CPI reading")
		dollarYTD       = flag.Float64("dollar-index-ytd", 0, "Macro: dollar index YTD change (percent)")
		policyRate      = flag.Float64("policy-rate", 0, "Macro: current policy rate")
		cpiThreshold    = flag.String("cpi-threshold", "", "Macro: CPI threshold (empty = not part of the condition)")
		dollarThreshold = flag.String("dollar-ytd-threshold", "", "Macro: dollar YTD threshold")
		policyThreshold = flag.String("policy-rate-threshold", "", "Macro: policy rate threshold")

		firstYear   = flag.Int("first-year", time.Now().Year()-10, "TOY: first year")
		lastYear    = flag.Int("last-year", time.Now().Year()-1, "TOY: last year")
		toyStart    = flag.String("toy-start", "11-19", "TOY: window start (MM-DD)")
		toyEnd      = flag.String("toy-end", "01-19", "TOY: window end (MM-DD)")
		forwardDays = flag.String("forward-days", "", "TOY: comma-separated forward day offsets")

		contextFilters = flag.String("context-filters", "", "Comma-separated context filters (e.g. FED_MEETING)")
	)
	flag.Parse()

	log := logger.NewLogger("info")

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	coordinator := buildCoordinator(cfg, log)

	params, err := buildParams(models.EventKind(*kind), paramFlags{
		days: *days, threshold: *threshold, direction: *direction,
		openThreshold: *openThreshold, closeThreshold: *closeThreshold,
		smaPeriod: *smaPeriod, symbolA: *symbolA, symbolB: *symbolB,
		indexSymbol: *indexSymbol, priceCondition: *priceCondition,
		ticker: *ticker, firstYear: *firstYear, lastYear: *lastYear,
		toyStart: *toyStart, toyEnd: *toyEnd, forwardDays: *forwardDays,
		cpi: *cpi, dollarYTD: *dollarYTD, policyRate: *policyRate,
		cpiThreshold: *cpiThreshold, dollarThreshold: *dollarThreshold,
		policyThreshold: *policyThreshold,
	})
	if err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}

	req := models.NewAnalysisRequest(models.EventKind(*kind), *ticker, params)
	for _, filter := range splitList(*contextFilters) {
		req.ContextFilters = append(req.ContextFilters, models.Regime(filter))
	}

	response, err := coordinator.Analyze(context.Background(), req)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		log.Fatalf("Failed to encode response: %v", err)
	}
}

func buildCoordinator(cfg *config.Config, log *logrus.Logger) *engine.Coordinator {
	clientCfg := datasource.DefaultHTTPClientConfig()
	clientCfg.Timeout = time.Duration(cfg.MarketData.TimeoutSeconds) * time.Second
	clientCfg.MaxRetries = cfg.MarketData.MaxRetries
	clientCfg.RateLimit = cfg.MarketData.RateLimit

	client := datasource.NewRateLimitedHTTPClient(clientCfg, log)
	provider := datasource.NewBarsAPIProvider(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, client, log)

	registry := engine.NewRegistry(provider, log)
	filters := regime.NewService(log)
	calculator := forward.NewCalculator(nil, log)
	return engine.NewCoordinator(registry, provider, filters, calculator, cfg.Analysis.HistoryYears, log)
}

type paramFlags struct {
	days           int
	threshold      float64
	direction      string
	openThreshold  float64
	closeThreshold float64
	smaPeriod      int
	symbolA        string
	symbolB        string
	indexSymbol    string
	priceCondition string
	ticker         string
	firstYear      int
	lastYear       int
	toyStart       string
	toyEnd         string
	forwardDays    string

	cpi             float64
	dollarYTD       float64
	policyRate      float64
	cpiThreshold    string
	dollarThreshold string
	policyThreshold string
}

func buildParams(kind models.EventKind, f paramFlags) (models.EngineParams, error) {
	switch kind {
	case models.EventPercentMove:
		return models.PercentMoveParams{
			Days:      f.days,
			Threshold: f.threshold,
			Direction: models.MoveDirection(f.direction),
		}, nil
	case models.EventReversal:
		return models.ReversalParams{
			OpenThreshold:  f.openThreshold,
			CloseThreshold: f.closeThreshold,
		}, nil
	case models.EventSectorSpread:
		return models.SectorSpreadParams{
			SymbolA:   f.symbolA,
			SymbolB:   f.symbolB,
			Days:      f.days,
			Threshold: f.threshold,
		}, nil
	case models.EventMomentumBullish, models.EventMomentumBearish:
		mtype := models.MomentumBullish
		if kind == models.EventMomentumBearish {
			mtype = models.MomentumBearish
		}
		return models.MomentumParams{
			SMAPeriod: f.smaPeriod,
			Days:      f.days,
			Type:      mtype,
			Threshold: f.threshold,
		}, nil
	case models.EventVolatilitySpike:
		return models.VolatilityParams{
			IndexSymbol:    f.indexSymbol,
			VIXThreshold:   f.threshold,
			PriceCondition: f.priceCondition,
		}, nil
	case models.EventMacroSignal:
		params := models.MacroParams{
			CPI:            f.cpi,
			DollarIndexYTD: f.dollarYTD,
			PolicyRate:     f.policyRate,
		}
		var err error
		if params.CPIThreshold, err = optionalFloat(f.cpiThreshold); err != nil {
			return nil, err
		}
		if params.DollarYTDThreshold, err = optionalFloat(f.dollarThreshold); err != nil {
			return nil, err
		}
		if params.PolicyRateThreshold, err = optionalFloat(f.policyThreshold); err != nil {
			return nil, err
		}
		return params, nil
	case models.EventTOYSeasonal:
		offsets, err := parseForwardDays(f.forwardDays)
		if err != nil {
			return nil, err
		}
		return models.TOYParams{
			Ticker:      f.ticker,
			FirstYear:   f.firstYear,
			LastYear:    f.lastYear,
			TOYStart:    f.toyStart,
			TOYEnd:      f.toyEnd,
			Threshold:   f.threshold,
			ForwardDays: offsets,
		}, nil
	default:
		return nil, models.ErrUnknownEventKind
	}
}

func optionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseForwardDays(raw string) ([]int, error) {
	var offsets []int
	for _, part := range splitList(raw) {
		offset, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
