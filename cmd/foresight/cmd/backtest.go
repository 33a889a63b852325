package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/backtest"
	"github.com/rustyeddy/foresight/export"
	"github.com/rustyeddy/foresight/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the forecaster over history",
	Long: `Replay the forecaster across a window of daily bars, grading each
session's call against the following session's close. The journal is
never touched; the scorecard is computed in memory and printed.

Examples:
  foresight backtest
  foresight backtest --bars data/spy.csv --warmup 250
  foresight backtest --json`,
	RunE: runBacktest,
}

var (
	backtestBars   string
	backtestWarmup int
	backtestJSON   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestBars, "bars", "", "load bars from this CSV instead of the configured source")
	backtestCmd.Flags().IntVar(&backtestWarmup, "warmup", 0, "bars seeding the indicators before the first call (default min_bars)")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "print the scorecard as JSON")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var bars market.Series
	if backtestBars != "" {
		bars, err = market.LoadCSV(backtestBars)
		if err != nil {
			return fmt.Errorf("load bars from %s: %w", backtestBars, err)
		}
	} else {
		bars, err = loadBars(cmd.Context(), cfg)
		if err != nil {
			return err
		}
	}

	warmup := backtestWarmup
	if warmup <= 0 {
		warmup = cfg.Forecast.MinBars
	}

	agg, err := newAggregator(cfg)
	if err != nil {
		return err
	}

	runner := &backtest.Runner{
		Symbol:     cfg.Forecast.Symbol,
		Warmup:     warmup,
		Aggregator: agg,
	}
	res, err := runner.Run(bars)
	if err != nil {
		return err
	}

	if backtestJSON {
		data, err := json.MarshalIndent(res.Stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("replayed %d sessions, %s to %s\n\n",
		len(res.Records), res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
	fmt.Println(export.FormatStatsText(res.Stats))
	return nil
}
