package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the foresight CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("foresight version %s\n", version)
		fmt.Println("A daily directional forecaster with an honest scorecard")
		fmt.Println("https://github.com/rustyeddy/foresight")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
