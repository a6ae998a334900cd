// Package main provides the long-running pattern scanner service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/market-patterns/internal/config"
	"github.com/yourusername/market-patterns/internal/datasource"
	"github.com/yourusername/market-patterns/internal/engine"
	"github.com/yourusername/market-patterns/internal/forward"
	"github.com/yourusername/market-patterns/internal/health"
	"github.com/yourusername/market-patterns/internal/logger"
	"github.com/yourusername/market-patterns/internal/metrics"
	"github.com/yourusername/market-patterns/internal/regime"
	"github.com/yourusername/market-patterns/internal/scheduler"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "patternd",
		Short: "Historical market pattern scanning service",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to config file")
	root.AddCommand(newServeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scanner with health, metrics and scheduled scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.App.LogLevel)

	coordinator := buildCoordinator(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthServer := health.NewServer(cfg.App.Name, cfg.Health.Port, coordinator, log)
	go func() {
		if err := healthServer.Start(ctx); err != nil {
			log.WithError(err).Error("Health server stopped")
		}
	}()

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg, log)
	}

	if cfg.Scheduler.Enabled {
		scans := scheduler.New(coordinator, cfg.Scheduler, scheduler.NewLoggingSink(log), log)
		if err := scans.Start(ctx); err != nil {
			return err
		}
		defer scans.Stop()
	}

	healthServer.SetReady(true)
	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"scheduler":   cfg.Scheduler.Enabled,
	}).Info("Pattern scanner running")

	<-ctx.Done()
	log.Info("Shutting down")
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
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

func serveMetrics(cfg *config.Config, log *logrus.Logger) {
	entry := logger.WithComponent(log, "metrics")
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	entry.WithField("addr", addr).Info("Metrics server starting")
	if err := http.ListenAndServe(addr, mux); err != nil {
		entry.WithError(err).Error("Metrics server stopped")
	}
}
