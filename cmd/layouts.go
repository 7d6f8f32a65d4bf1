package cmd

import (
	"github.com/mj1618/aerospace-layouts/internal/config"
	"github.com/mj1618/aerospace-layouts/internal/output"
	"github.com/spf13/cobra"
)

// layoutEntry is the per-layout summary printed by the layouts command.
type layoutEntry struct {
	Name        string `yaml:"name"              json:"name"`
	Workspace   string `yaml:"workspace"         json:"workspace"`
	Layout      string `yaml:"layout"            json:"layout"`
	Orientation string `yaml:"orientation"       json:"orientation"`
	Display     string `yaml:"display,omitempty" json:"display,omitempty"`
	Windows     int    `yaml:"windows"           json:"windows"`
}

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the layouts defined in the config file",
	RunE:  runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	entries := []layoutEntry{}
	for _, name := range cfg.LayoutNames() {
		l := cfg.Layouts[name]
		entries = append(entries, layoutEntry{
			Name:        name,
			Workspace:   l.Workspace,
			Layout:      string(l.Mode),
			Orientation: string(l.Orientation),
			Display:     l.Display,
			Windows:     countWindows(l.Windows),
		})
	}
	return output.Print(entries)
}

// countWindows counts the window leaves of a layout tree.
func countWindows(nodes []config.Node) int {
	count := 0
	for _, node := range nodes {
		switch n := node.(type) {
		case *config.WindowNode:
			count++
		case *config.GroupNode:
			count += countWindows(n.Windows)
		}
	}
	return count
}
