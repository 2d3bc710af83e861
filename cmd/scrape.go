package cmd

import (
	"github.com/spf13/cobra"

	"opentrail/scraper/browser"
	"opentrail/scraper/static"
	"opentrail/services"
)

var scrapeResortID string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape pass over all stale resorts, or a single resort",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, store := bootstrap()
		defer store.Close()

		logger.Info("=== Open Trail Report scraper starting ===")
		logger.Info("Config — staleness: %dmin | concurrency: %d | element wait: %ds",
			cfg.StalenessMinutes, cfg.MaxConcurrency, cfg.ElementWaitSeconds)

		browserFetcher := browser.NewFetcher(cfg, logger)
		defer browserFetcher.Close()
		staticFetcher := static.NewFetcher(logger)

		svc := services.NewScrapeService(cfg, logger, store, browserFetcher, staticFetcher)

		if scrapeResortID != "" {
			return svc.ScrapeByID(scrapeResortID)
		}
		return svc.ScrapeStale()
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeResortID, "resort", "", "scrape a single resort by id")
	rootCmd.AddCommand(scrapeCmd)
}
