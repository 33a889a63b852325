package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the complete forecaster configuration
type Config struct {
	Forecast ForecastConfig `json:"forecast" yaml:"forecast"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Export   ExportConfig   `json:"export" yaml:"export"`
	Watch    WatchConfig    `json:"watch" yaml:"watch"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// ForecastConfig contains the daily call parameters
type ForecastConfig struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	// Horizon is how long a prediction stays open before evaluation,
	// e.g. "24h", "48h". Empty means 24h.
	Horizon string `json:"horizon,omitempty" yaml:"horizon,omitempty"`
	// MinBars is how much daily history feeds the indicators. The
	// slowest one needs 50 sessions; more history costs nothing.
	MinBars int `json:"min_bars" yaml:"min_bars"`
}

// Duration returns the parsed forecast horizon
func (f ForecastConfig) Duration() (time.Duration, error) {
	if f.Horizon == "" {
		return 24 * time.Hour, nil
	}
	return time.ParseDuration(f.Horizon)
}

// DataConfig says where daily bars come from
type DataConfig struct {
	Source string `json:"source" yaml:"source"` // "stooq" or "csv"
	// BaseURL overrides the stooq endpoint, mainly for tests.
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	CSVPath   string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	FetchDays int    `json:"fetch_days" yaml:"fetch_days"`
}

// JournalConfig contains prediction store parameters
type JournalConfig struct {
	Type     string `json:"type" yaml:"type"` // "sqlite" or "json"
	DBPath   string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// ExportConfig controls the JSON artifacts written for dashboards
type ExportConfig struct {
	Dir    string `json:"dir" yaml:"dir"`
	Recent int    `json:"recent" yaml:"recent"`
}

// WatchConfig drives the scheduled forecast/evaluate loop
type WatchConfig struct {
	ForecastCron string `json:"forecast_cron" yaml:"forecast_cron"`
	EvaluateCron string `json:"evaluate_cron" yaml:"evaluate_cron"`
	// MetricsListen exposes Prometheus metrics when set, e.g. ":9090".
	MetricsListen string `json:"metrics_listen,omitempty" yaml:"metrics_listen,omitempty"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Forecast.Symbol == "" {
		return fmt.Errorf("forecast.symbol is required")
	}
	horizon, err := c.Forecast.Duration()
	if err != nil {
		return fmt.Errorf("forecast.horizon: %w", err)
	}
	if horizon <= 0 {
		return fmt.Errorf("forecast.horizon must be positive")
	}
	if c.Forecast.MinBars < 60 {
		return fmt.Errorf("forecast.min_bars must be at least 60 to warm up the slow indicators")
	}
	if c.Data.Source != "stooq" && c.Data.Source != "csv" {
		return fmt.Errorf("data.source must be 'stooq' or 'csv'")
	}
	if c.Data.Source == "csv" && c.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path required for CSV source")
	}
	if c.Data.Source == "stooq" && c.Data.FetchDays <= 0 {
		return fmt.Errorf("data.fetch_days must be positive")
	}
	if c.Journal.Type != "sqlite" && c.Journal.Type != "json" {
		return fmt.Errorf("journal.type must be 'sqlite' or 'json'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if c.Journal.Type == "json" && c.Journal.FilePath == "" {
		return fmt.Errorf("journal file_path required for JSON type")
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}
	if c.Export.Recent <= 0 {
		return fmt.Errorf("export.recent must be positive")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if c.Watch.ForecastCron != "" {
		if _, err := parser.Parse(c.Watch.ForecastCron); err != nil {
			return fmt.Errorf("watch.forecast_cron: %w", err)
		}
	}
	if c.Watch.EvaluateCron != "" {
		if _, err := parser.Parse(c.Watch.EvaluateCron); err != nil {
			return fmt.Errorf("watch.evaluate_cron: %w", err)
		}
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults: SPY daily
// calls after the US close, graded the following session.
func Default() *Config {
	return &Config{
		Forecast: ForecastConfig{
			Symbol:  "SPY",
			Horizon: "24h",
			MinBars: 250,
		},
		Data: DataConfig{
			Source:    "stooq",
			FetchDays: 400,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./predictions.db",
		},
		Export: ExportConfig{
			Dir:    "./export",
			Recent: 30,
		},
		Watch: WatchConfig{
			ForecastCron: "CRON_TZ=America/New_York 10 16 * * 1-5",
			EvaluateCron: "CRON_TZ=America/New_York 20 16 * * 1-5",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
