// Package config provides configuration management for the pattern scanner.
package config

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	Analysis   AnalysisConfig   `mapstructure:"analysis" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Health     HealthConfig     `mapstructure:"health" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// MarketDataConfig represents the external bars API configuration
type MarketDataConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// AnalysisConfig represents analysis defaults
type AnalysisConfig struct {
	HistoryYears int `mapstructure:"history_years" validate:"required,gt=0,lte=50"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// SchedulerConfig represents scheduled watchlist scans
type SchedulerConfig struct {
	Enabled  bool            `mapstructure:"enabled"`
	Schedule string          `mapstructure:"schedule"`
	Jobs     []ScanJobConfig `mapstructure:"jobs" validate:"dive"`
}

// ScanJobConfig represents one recurring watchlist scan
type ScanJobConfig struct {
	Ticker    string  `mapstructure:"ticker" validate:"required"`
	Kind      string  `mapstructure:"kind" validate:"required"`
	Days      int     `mapstructure:"days"`
	Threshold float64 `mapstructure:"threshold"`
	Direction string  `mapstructure:"direction"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
