package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/market"
	"github.com/rustyeddy/foresight/stooq"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily bars to a local CSV",
	Long: `Download daily OHLCV bars from stooq and save them as CSV for
offline runs and backfills.

Examples:
  foresight fetch
  foresight fetch --days 500 --out data/spy.csv`,
	RunE: runFetch,
}

var (
	fetchDays int
	fetchOut  string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "calendar days of history (default from config)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "output CSV path (default <symbol>.csv)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	days := fetchDays
	if days <= 0 {
		days = cfg.Data.FetchDays
	}
	out := fetchOut
	if out == "" {
		out = cfg.Data.CSVPath
	}
	if out == "" {
		out = strings.ToLower(cfg.Forecast.Symbol) + ".csv"
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	client := stooq.NewClient(cfg.Data.BaseURL)
	bars, err := client.DailyBars(cmd.Context(), cfg.Forecast.Symbol, from, to)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars returned for %s", cfg.Forecast.Symbol)
	}

	if err := market.SaveCSV(out, bars); err != nil {
		return fmt.Errorf("save csv: %w", err)
	}

	last, _ := bars.Last()
	fmt.Printf("✓ Saved %d bars to %s\n", len(bars), out)
	fmt.Printf("  Range: %s to %s\n",
		bars[0].Date().Format("2006-01-02"), last.Date().Format("2006-01-02"))
	fmt.Printf("  Last close: %.2f\n", last.Close)
	return nil
}
