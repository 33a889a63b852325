package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/export"
	"github.com/rustyeddy/foresight/journal"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the lifetime scorecard",
	Long: `Report how the forecaster has actually done: counts and accuracy
over every evaluated prediction, overall and per direction.

Examples:
  foresight stats
  foresight stats --json`,
	RunE: runStats,
}

var statsJSON bool

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the scorecard as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	recs, err := store.All()
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	st := journal.ComputeStats(recs)

	if statsJSON {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(export.FormatStatsText(st))
	return nil
}
