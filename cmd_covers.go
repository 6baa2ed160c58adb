package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var coversCmd = &cobra.Command{
	Use:   "covers <series-dir>",
	Short: "Copy the first image of each season as its poster",
	Long: `For every season directory (S01, S02, ...) of a series, copies the first
.jpg in natural name order to the series directory as season01-poster.jpg.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		posters, err := copySeasonCovers(args[0], viper.GetBool(keyDryRun))
		if err != nil {
			return err
		}
		logger.Infof("Wrote %d season posters", len(posters))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(coversCmd)
}
