package cmd

import (
	"github.com/spf13/cobra"

	"opentrail/api"
	"opentrail/scraper/browser"
	"opentrail/scraper/static"
	"opentrail/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, store := bootstrap()
		defer store.Close()

		// The API needs a scrape service for the on-demand refresh
		// endpoint; the browser starts lazily enough that serving reads
		// does not wait on Chrome.
		browserFetcher := browser.NewFetcher(cfg, logger)
		defer browserFetcher.Close()
		staticFetcher := static.NewFetcher(logger)
		svc := services.NewScrapeService(cfg, logger, store, browserFetcher, staticFetcher)

		_, e := api.New(cfg, logger, store, store, svc)
		logger.Info("=== Open Trail Report API listening on %s ===", cfg.ListenAddr)
		return e.Start(cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
