package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var episodesCmd = &cobra.Command{
	Use:   "episodes <season-dir>",
	Short: "Rename episode files of a season directory",
	Long: `Renames the videos of a season directory (named like S04) to Jellyfin style
S04E09[ title] names, deletes .nfo files and other files that belong to a
renamed video. Subtitles (.srt, .ass) are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return renameEpisodes(args[0], viper.GetBool(keyDryRun))
	},
}

func init() {
	rootCmd.AddCommand(episodesCmd)
}
