package cmd

import (
	"github.com/spf13/cobra"

	"opentrail/storage"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump current lift and trail status for all resorts to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, store := bootstrap()
		defer store.Close()

		exporter, err := storage.NewCSVExporter(exportPath)
		if err != nil {
			return err
		}
		defer exporter.Close()

		resorts, err := store.Resorts()
		if err != nil {
			return err
		}

		for _, resort := range resorts {
			lifts, err := store.Lifts(resort.ID)
			if err != nil {
				return err
			}
			trails, err := store.Trails(resort.ID)
			if err != nil {
				return err
			}
			if err := exporter.WriteResort(resort, lifts, trails); err != nil {
				return err
			}
		}

		logger.Info("Exported %d resorts to %s", len(resorts), exportPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPath, "out", "./output/status.csv", "output CSV path")
	rootCmd.AddCommand(exportCmd)
}
