package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "media-tidy",
	Short: "Maintenance jobs for a personal photo and video library",
	Long: `media-tidy infers shooting dates from file names and embedded metadata,
captures video thumbnails and season covers, removes large duplicates and
renames episode files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		if viper.GetBool(keyVerbose) {
			logger.SetLevel(log.DebugLevel)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String(keyConfig, "", "Config file (default $XDG_CONFIG_HOME/media-tidy/config.yaml)")
	flags.BoolP(keyVerbose, "v", false, "Enable verbose logging")
	flags.Bool(keyDryRun, false, "Perform a dry run without making changes")
	flags.String(keySSHHost, "", "SSH host the directory lives on (e.g. nas or user@host:port)")

	for _, key := range []string{keyConfig, keyVerbose, keyDryRun, keySSHHost} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// bindFlags binds a subcommand's local flags into viper. It runs from the
// subcommand's PreRunE so subcommands can share flag names.
func bindFlags(cmd *cobra.Command, keys ...string) error {
	for _, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("Error", "err", err)
		stop()
		os.Exit(1)
	}
}
