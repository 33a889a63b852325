package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/export"
	"github.com/rustyeddy/foresight/journal"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade matured predictions against realized closes",
	Long: `Find pending predictions whose horizon has passed, look up the
realized close for each, and record the verdict.

Realized closes come from the configured data source. Pass --price to
grade against a known close instead, which keeps CSV-only setups
working without network access. Pass --asof to grade as of an earlier
clock, for backfilled records.

Examples:
  foresight evaluate
  foresight evaluate --price 512.30
  foresight evaluate --asof 2025-06-04`,
	RunE: runEvaluate,
}

var (
	evaluatePrice float64
	evaluateAsOf  string
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Float64Var(&evaluatePrice, "price", 0, "grade every due prediction against this close")
	evaluateCmd.Flags().StringVar(&evaluateAsOf, "asof", "", "evaluate as of this time (YYYY-MM-DD or RFC3339) instead of now")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if evaluateAsOf != "" {
		now, err = parseAsOf(evaluateAsOf)
		if err != nil {
			return err
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	price := priceSource(cmd.Context(), cfg)
	if evaluatePrice > 0 {
		price = func(string, time.Time) (float64, error) { return evaluatePrice, nil }
	}

	done, err := journal.NewEvaluator().EvaluateDue(store, now, price)
	for _, rec := range done {
		fmt.Printf("✓ %s  %s → %s  (%+.2f%%)\n", rec.ID, rec.Direction, rec.Outcome, rec.RealizedChangePct)
	}
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if len(done) == 0 {
		fmt.Println("Nothing due.")
		return nil
	}

	recs, err := store.All()
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	fmt.Println()
	fmt.Println(export.FormatStatsText(journal.ComputeStats(recs)))
	return nil
}

func parseAsOf(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --asof %q: want YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}
