package main

import (
	"github.com/spf13/cobra"
)

// defaultMinSize is 10 * 1024 * 1024 bytes
const defaultMinSize = "10MiB"

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <dir>",
	Short: "Delete large files that share the same size",
	Long: `Groups the files under a directory that are larger than --min-size by their
exact size. In every group with more than one file a single copy is kept and
the others are deleted; copies inside --preferred-dir are deleted first.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, keyPreferredDir, keyMinSize, keyReport, keyVerify)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		report, err := runDedupe(config, args[0])
		if err != nil {
			return err
		}
		logger.Infof("Deleted %d duplicate files (%d failed)", report.Deleted, len(report.Failed))
		return nil
	},
}

func init() {
	flags := dedupeCmd.Flags()
	flags.String(keyPreferredDir, "", "Directory whose copies are deleted first")
	flags.String(keyMinSize, defaultMinSize, "Only compare files strictly larger than this")
	flags.String(keyReport, "", "Write the deletion plan as YAML to this file")
	flags.Bool(keyVerify, false, "Only delete files whose content matches the kept file")
	rootCmd.AddCommand(dedupeCmd)
}
