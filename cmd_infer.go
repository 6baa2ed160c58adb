package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"media-tidy/shootdate"
)

var (
	styleDim   = lipgloss.NewStyle().Faint(true)
	styleMatch = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var inferCmd = &cobra.Command{
	Use:   "infer <name-or-path>...",
	Short: "Print the shooting date inferred for file names or paths",
	Long: `Runs the shooting date engine on each argument and prints
"<input>\t<timestamp>\t<rule>", or "<input>\t-\tno match". Arguments naming an
existing file also have their embedded metadata read. Nothing is written.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, keyExplain)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		engine := &shootdate.Engine{}
		for _, arg := range args {
			inferOne(cmd.OutOrStdout(), engine, arg, config.Explain)
		}
		return nil
	},
}

func init() {
	inferCmd.Flags().Bool(keyExplain, false, "Also show every file name rule and what it matched")
	rootCmd.AddCommand(inferCmd)
}

// inferOne prints the result for a single argument
func inferOne(w io.Writer, engine *shootdate.Engine, arg string, explain bool) {
	var meta *shootdate.Metadata
	if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
		meta, err = ReadEmbeddedMetadata(arg)
		if err != nil && !errors.Is(err, shootdate.ErrNoMetadata) {
			logger.Warnf("Failed to read metadata of %s: %v", arg, err)
		}
	}

	if res, ok := engine.Infer(arg, meta); ok {
		fmt.Fprintf(w, "%s\t%s\t%s\n", arg, res.Timestamp, res.Rule)
	} else {
		fmt.Fprintf(w, "%s\t-\tno match\n", arg)
	}

	if !explain {
		return
	}
	if meta != nil {
		fmt.Fprintf(w, "  %s %q\n", styleDim.Render("DateTimeOriginal"), meta.DateTimeOriginal)
		fmt.Fprintf(w, "  %s %q\n", styleDim.Render(shootdate.CreationTimeKey), meta.Text[shootdate.CreationTimeKey])
	}
	name := shootdate.StripIdentifiers(filepath.Base(arg))
	fmt.Fprintf(w, "  %s %s\n", styleDim.Render("name"), name)
	for _, rule := range shootdate.Rules() {
		if ts, ok := rule.Match(engine, name); ok {
			fmt.Fprintf(w, "  %-24s %s\n", rule.Name, styleMatch.Render(ts))
		} else {
			fmt.Fprintf(w, "  %-24s %s\n", rule.Name, styleDim.Render("-"))
		}
	}
}
