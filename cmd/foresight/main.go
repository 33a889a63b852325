package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rustyeddy/foresight/cmd/foresight/cmd"
)

func main() {
	// A local .env may carry FORESIGHT_CONFIG for unattended runs.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
