package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/config"
	"github.com/rustyeddy/foresight/export"
	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/indicators"
	"github.com/rustyeddy/foresight/journal"
	"github.com/rustyeddy/foresight/market"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Generate and record today's directional call",
	Long: `Fetch daily bars, score the indicator battery, and record a
directional call for the next session.

The call is appended to the journal before the session resolves, so the
verdict cannot be revised after the fact, and the dashboard artifacts
are refreshed. A session that is already recorded is rejected; use
--dry-run to preview without recording, or --date to backfill an
earlier session from historical bars.

Examples:
  foresight forecast
  foresight forecast --dry-run
  foresight forecast --bars data/spy.csv --date 2025-06-02`,
	RunE: runForecast,
}

var (
	forecastBars   string
	forecastDate   string
	forecastDryRun bool
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().StringVar(&forecastBars, "bars", "", "load bars from this CSV instead of the configured source")
	forecastCmd.Flags().StringVar(&forecastDate, "date", "", "forecast as of this session (YYYY-MM-DD), for backfills")
	forecastCmd.Flags().BoolVar(&forecastDryRun, "dry-run", false, "print the call without recording it")
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var bars market.Series
	if forecastBars != "" {
		bars, err = market.LoadCSV(forecastBars)
		if err != nil {
			return fmt.Errorf("load bars from %s: %w", forecastBars, err)
		}
	} else {
		bars, err = loadBars(cmd.Context(), cfg)
		if err != nil {
			return err
		}
	}

	if forecastDate != "" {
		day, err := time.Parse("2006-01-02", forecastDate)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
		cut := len(bars)
		for i, b := range bars {
			if b.Date().After(day) {
				cut = i
				break
			}
		}
		bars = bars[:cut]
		if len(bars) == 0 {
			return fmt.Errorf("no bars on or before %s", forecastDate)
		}
	}

	if len(bars) < cfg.Forecast.MinBars {
		log.Warnf("only %d bars loaded, want %d; slow indicators may sit out", len(bars), cfg.Forecast.MinBars)
	}

	snap := indicators.BuildSnapshot(cfg.Forecast.Symbol, bars)

	agg, err := newAggregator(cfg)
	if err != nil {
		return err
	}
	f, err := agg.Aggregate(snap)
	if err != nil {
		var insufficient *forecast.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return fmt.Errorf("aggregate: %w", err)
		}
		log.Warnf("recording neutral call: %v", err)
	}

	if forecastDryRun {
		fmt.Println(export.FormatForecastText(f))
		return nil
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	rec, err := store.Append(f)
	if err != nil {
		var dup *journal.DuplicateError
		if errors.As(err, &dup) {
			return fmt.Errorf("already recorded %s for this session, use --dry-run to preview", f.ID)
		}
		return fmt.Errorf("record forecast: %w", err)
	}

	fmt.Println(export.FormatForecastText(rec.Forecast))

	// A backfill is not the latest call; leave forecast_latest.json alone.
	if forecastDate != "" {
		return writeArtifacts(cfg, store, nil, nil)
	}
	return writeArtifacts(cfg, store, &f, &snap)
}

// writeArtifacts refreshes the dashboard files. latest and snap may be
// nil when no fresh forecast is on hand, in which case only the journal
// artifacts are rewritten.
func writeArtifacts(cfg *config.Config, store journal.Store, latest *forecast.Forecast, snap *forecast.Snapshot) error {
	recs, err := store.All()
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	st := journal.ComputeStats(recs)

	path, err := export.WriteHistory(cfg.Export.Dir, st, recs, cfg.Export.Recent)
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	fmt.Printf("✓ Wrote %s\n", path)

	if latest != nil && snap != nil {
		path, err = export.WriteLatest(cfg.Export.Dir, *latest, *snap)
		if err != nil {
			return fmt.Errorf("write latest: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}
	return nil
}
