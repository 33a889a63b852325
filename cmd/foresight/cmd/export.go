package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/export"
	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/indicators"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write dashboard artifacts from the journal",
	Long: `Rewrite the JSON artifacts a dashboard can poll: the prediction
history with its scorecard, and with --latest a freshly computed
forecast snapshot. Nothing is appended to the journal.

Examples:
  foresight export
  foresight export --org
  foresight export --latest`,
	RunE: runExport,
}

var (
	exportOrg    bool
	exportLatest bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&exportOrg, "org", false, "also write the org-mode review file")
	exportCmd.Flags().BoolVar(&exportLatest, "latest", false, "also recompute forecast_latest.json from fresh bars")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	var latest *forecast.Forecast
	var snap *forecast.Snapshot
	if exportLatest {
		bars, err := loadBars(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		s := indicators.BuildSnapshot(cfg.Forecast.Symbol, bars)

		agg, err := newAggregator(cfg)
		if err != nil {
			return err
		}
		f, err := agg.Aggregate(s)
		if err != nil {
			var insufficient *forecast.InsufficientDataError
			if !errors.As(err, &insufficient) {
				return fmt.Errorf("aggregate: %w", err)
			}
			log.Warnf("exporting neutral call: %v", err)
		}
		latest, snap = &f, &s
	}

	if err := writeArtifacts(cfg, store, latest, snap); err != nil {
		return err
	}

	if exportOrg {
		recs, err := store.All()
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		path, err := export.WriteOrg(cfg.Export.Dir, recs)
		if err != nil {
			return fmt.Errorf("write org: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}
	return nil
}
