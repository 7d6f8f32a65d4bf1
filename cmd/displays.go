package cmd

import (
	"github.com/mj1618/aerospace-layouts/internal/display"
	"github.com/mj1618/aerospace-layouts/internal/output"
	"github.com/mj1618/aerospace-layouts/internal/runner"
	"github.com/spf13/cobra"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List the attached displays",
	Long: `List the attached displays with their resolution and flags, as seen by
the display resolver. Useful for choosing a layout's display specifier.`,
	RunE: runDisplays,
}

func init() {
	rootCmd.AddCommand(displaysCmd)
}

func runDisplays(cmd *cobra.Command, args []string) error {
	lister := &display.Lister{Runner: runner.New(logger), Log: logger}
	displays, err := lister.List(cmd.Context())
	if err != nil {
		return err
	}
	return output.Print(displays)
}
