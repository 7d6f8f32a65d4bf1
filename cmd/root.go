package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mj1618/aerospace-layouts/internal/output"
	"github.com/mj1618/aerospace-layouts/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aerospace-layouts",
	Short: "Apply declarative window layouts to the AeroSpace window manager",
	Long: `A CLI tool that applies declarative, hierarchical window layouts to the
AeroSpace tiling window manager: it resolves the target display, clears the
workspace, moves application windows in (launching them if needed), arranges
them into the configured tree, and resizes them by fractional size hints.`,
	SilenceUsage: true,
}

// logger is configured in PersistentPreRunE and shared by all commands.
var logger = log.New(os.Stderr)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.config/aerospace-layouts/config.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		debug, _ := rootCmd.PersistentFlags().GetBool("debug")
		level := log.WarnLevel
		if debug {
			level = log.DebugLevel
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		})

		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		pretty, _ := rootCmd.PersistentFlags().GetBool("pretty")
		output.PrettyOutput = pretty
		return nil
	}
}

// configPath reads the --config persistent flag.
func configPath() string {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	return path
}
