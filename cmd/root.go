// Package cmd wires the CLI commands together.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"opentrail/config"
	"opentrail/storage"
	"opentrail/utils"
)

var rootCmd = &cobra.Command{
	Use:   "opentrail",
	Short: "Scrapes ski-resort trail reports into Postgres and serves them over an API",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config and opens the store, exiting on failure the
// way the scraper's entrypoint always has.
func bootstrap() (*config.Config, *utils.Logger, *storage.Postgres) {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	store, err := storage.New(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}

	return cfg, logger, store
}
