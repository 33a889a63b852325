package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/config"
	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/journal"
	"github.com/rustyeddy/foresight/market"
	"github.com/rustyeddy/foresight/stooq"
)

var rootCmd = &cobra.Command{
	Use:   "foresight",
	Short: "A daily directional forecaster with an honest scorecard",
	Long: `Foresight scores a battery of technical indicators over daily bars
and calls the next session UP, DOWN, or NEUTRAL with a confidence
score. Every call is written to an append-only journal before the
session resolves and graded against the realized close afterward, so
the accuracy numbers are earned, not curated.

It provides tools for:
  - Generating and recording the daily forecast
  - Grading matured predictions against realized closes
  - Reporting lifetime accuracy, overall and per direction
  - Downloading daily bars from stooq to local CSV
  - Exporting dashboard-ready JSON and org-mode artifacts
  - Running unattended on a cron schedule with Prometheus metrics

Complete documentation is available at https://github.com/rustyeddy/foresight`,
}

var log = logrus.WithField("component", "cli")

var (
	cfgPath  string
	debugLog bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (YAML or JSON), also $FORESIGHT_CONFIG")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")
}

func initLogging() {
	if debugLog {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// loadConfig resolves the effective configuration: the --config flag,
// then $FORESIGHT_CONFIG, then built-in defaults.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = os.Getenv("FORESIGHT_CONFIG")
	}
	if path == "" {
		cfg := config.Default()
		applyLogLevel(cfg)
		return cfg, nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cfg)
	return cfg, nil
}

// applyLogLevel honors log.level from the config unless --debug already
// forced the level.
func applyLogLevel(cfg *config.Config) {
	if debugLog || cfg.Log.Level == "" {
		return
	}
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(lvl)
	}
}

// openStore opens the configured journal backend. The caller owns Close.
func openStore(cfg *config.Config) (journal.Store, error) {
	if cfg.Journal.Type == "json" {
		return journal.NewFile(cfg.Journal.FilePath)
	}
	return journal.NewSQLite(cfg.Journal.DBPath)
}

// loadBars assembles the indicator input series from the configured
// data source.
func loadBars(ctx context.Context, cfg *config.Config) (market.Series, error) {
	if cfg.Data.Source == "csv" {
		bars, err := market.LoadCSV(cfg.Data.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("load bars from %s: %w", cfg.Data.CSVPath, err)
		}
		return bars, nil
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -cfg.Data.FetchDays)
	client := stooq.NewClient(cfg.Data.BaseURL)
	bars, err := client.DailyBars(ctx, cfg.Forecast.Symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	return bars, nil
}

// newAggregator builds the aggregator with the configured horizon.
func newAggregator(cfg *config.Config) (*forecast.Aggregator, error) {
	horizon, err := cfg.Forecast.Duration()
	if err != nil {
		return nil, fmt.Errorf("parse horizon: %w", err)
	}
	agg := forecast.NewAggregator()
	agg.Horizon = horizon
	return agg, nil
}

// priceSource returns the realized-close lookup backing evaluation. The
// csv source scans the local file for the first session on or after the
// maturity; stooq asks the wire.
func priceSource(ctx context.Context, cfg *config.Config) journal.PriceFunc {
	if cfg.Data.Source == "csv" {
		return func(symbol string, at time.Time) (float64, error) {
			bars, err := market.LoadCSV(cfg.Data.CSVPath)
			if err != nil {
				return 0, err
			}
			day := at.UTC().Truncate(24 * time.Hour)
			for _, b := range bars {
				if !b.Date().Before(day) {
					return b.Close, nil
				}
			}
			return 0, fmt.Errorf("no close on or after %s in %s",
				day.Format("2006-01-02"), cfg.Data.CSVPath)
		}
	}

	client := stooq.NewClient(cfg.Data.BaseURL)
	return func(symbol string, at time.Time) (float64, error) {
		return client.CloseAt(ctx, symbol, at)
	}
}
