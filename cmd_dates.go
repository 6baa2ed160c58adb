package main

import (
	"github.com/spf13/cobra"
)

var datesCmd = &cobra.Command{
	Use:   "dates <dir>",
	Short: "Write inferred shooting dates into photos and videos",
	Long: `Walks a directory, infers every file's shooting date from embedded metadata
or its file name, and writes it as EXIF DateTimeOriginal (photos, via exiftool)
or as the MP4 creation time (videos, via ffmpeg). Files that already carry a
valid date are left alone.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, keyWorkers, keyPNGToJPG, keyVideoCodec)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		return NewDateProcessor(config).Process(cmd.Context(), args[0])
	},
}

func init() {
	flags := datesCmd.Flags()
	flags.IntP(keyWorkers, "w", 0, "Number of concurrent workers (default: number of CPUs)")
	flags.Bool(keyPNGToJPG, true, "Convert PNG files to JPG before writing EXIF")
	flags.String(keyVideoCodec, "copy", "ffmpeg video codec used when rewriting MP4 files")
	rootCmd.AddCommand(datesCmd)
}
