package cmd

import (
	"github.com/spf13/cobra"

	"opentrail/models"
)

// seedResorts is the administratively-maintained resort list. Adding a
// resort means adding a row here plus a registered parser strategy.
var seedResorts = []*models.Resort{
	{
		ID:             "bolton-valley",
		Name:           "Bolton Valley",
		City:           "Bolton Valley",
		State:          "VT",
		ParserName:     "BoltonValley",
		TrailReportURL: "https://snow.boltonvalley.com/snow-report/snow/snow-report/",
	},
	{
		ID:             "jay-peak",
		Name:           "Jay Peak",
		City:           "Jay",
		State:          "VT",
		ParserName:     "JayPeak",
		TrailReportURL: "https://digital.jaypeakresort.com/conditions/snow-report/snow-report/",
	},
	{
		ID:                    "cannon-mountain",
		Name:                  "Cannon Mountain",
		City:                  "Franconia",
		State:                 "NH",
		ParserName:            "CannonMountain",
		TrailReportURL:        "https://www.cannonmt.com/mountain/trails-lifts",
		AdditionalWaitSeconds: 5,
	},
	{
		ID:             "burke-mountain",
		Name:           "Burke Mountain",
		City:           "East Burke",
		State:          "VT",
		ParserName:     "BurkeMountain",
		TrailReportURL: "https://skiburke.com/mountain-and-learning/trail-lift-report/",
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the known resorts into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, store := bootstrap()
		defer store.Close()

		if err := store.SeedResorts(seedResorts); err != nil {
			return err
		}
		logger.Info("Seeded %d resorts", len(seedResorts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
