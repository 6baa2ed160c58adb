package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pruneCmd = &cobra.Command{
	Use:   "prune <root> [name]",
	Short: "Delete every directory with a given name",
	Long: `Deletes every directory called name (default @eaDir, the Synology metadata
directory) below root, including its contents.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := synologyMetaDir
		if len(args) > 1 {
			name = args[1]
		}
		removed, err := pruneDirs(args[0], name, viper.GetBool(keyDryRun))
		if err != nil {
			return err
		}
		logger.Infof("Deleted %d directories named %s", len(removed), name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
