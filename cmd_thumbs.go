package main

import (
	"github.com/spf13/cobra"
)

var thumbsCmd = &cobra.Command{
	Use:   "thumbs <dir>",
	Short: "Capture a thumbnail frame for every video",
	Long: `Captures one frame from every .mp4 and .mkv video under a directory with
ffmpeg and saves it next to the video as <name>-thumb.jpg.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, keyThumbAt, keyOverwrite)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		n, err := captureThumbnails(cmd.Context(), config, args[0])
		if err != nil {
			return err
		}
		logger.Infof("Captured %d thumbnails", n)
		return nil
	},
}

func init() {
	flags := thumbsCmd.Flags()
	flags.String(keyThumbAt, defaultThumbAt, "Position of the captured frame (HH:MM:SS or seconds)")
	flags.Bool(keyOverwrite, false, "Recapture thumbnails that already exist")
	rootCmd.AddCommand(thumbsCmd)
}
