package cmd

import (
	"fmt"

	"github.com/mj1618/aerospace-layouts/internal/apps"
	"github.com/mj1618/aerospace-layouts/internal/config"
	"github.com/mj1618/aerospace-layouts/internal/display"
	"github.com/mj1618/aerospace-layouts/internal/engine"
	"github.com/mj1618/aerospace-layouts/internal/output"
	"github.com/mj1618/aerospace-layouts/internal/runner"
	"github.com/mj1618/aerospace-layouts/internal/wm"
	"github.com/spf13/cobra"
)

// ApplyResult is the output of a successful apply.
type ApplyResult struct {
	OK        bool   `yaml:"ok"        json:"ok"`
	Action    string `yaml:"action"    json:"action"`
	Layout    string `yaml:"layout"    json:"layout"`
	Workspace string `yaml:"workspace" json:"workspace"`
}

var applyCmd = &cobra.Command{
	Use:   "apply [layout name]",
	Short: "Apply a configured layout",
	Long: `Apply a named layout from the config file: clear the target workspace,
move the layout's windows into it (launching applications as needed), arrange
them into the configured tree, and apply fractional size hints.

Individual window failures are logged and skipped; only configuration
problems (unknown layout, no display selectable) abort the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().String("layout", "", "Layout name (alternative to the positional argument)")
}

func runApply(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("layout")
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return fmt.Errorf("specify a layout name (positional or --layout)")
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	layout, err := cfg.Layout(name)
	if err != nil {
		return err
	}

	r := runner.New(logger)
	eng := engine.New(
		wm.NewAerospace(r),
		&apps.Launcher{Runner: r, Log: logger},
		&display.Lister{Runner: r, Log: logger},
		logger,
	)
	if err := eng.Apply(cmd.Context(), layout, cfg.StashWorkspace); err != nil {
		return err
	}

	return output.Print(ApplyResult{
		OK:        true,
		Action:    "apply",
		Layout:    name,
		Workspace: layout.Workspace,
	})
}
