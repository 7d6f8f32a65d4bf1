// Package config loads and validates the declarative layout configuration.
//
// The config file is a JSON document mapping layout names to layout trees:
//
//	{
//	  "stashWorkspace": "S",
//	  "layouts": {
//	    "work": {
//	      "workspace": "W",
//	      "layout": "h_tiles",
//	      "orientation": "horizontal",
//	      "windows": [
//	        {"bundleId": "com.apple.Safari"},
//	        {"orientation": "vertical", "size": "1/3", "windows": [
//	          {"bundleId": "com.apple.Terminal"}
//	        ]}
//	      ]
//	    }
//	  }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultStashWorkspace holds windows evicted from the target workspace
// while a layout is applied.
const DefaultStashWorkspace = "S"

// Config is the parsed top-level configuration document.
type Config struct {
	StashWorkspace string             `json:"stashWorkspace"`
	Layouts        map[string]*Layout `json:"layouts"`
}

// DefaultPath returns the default config location:
// ~/.config/aerospace-layouts/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "aerospace-layouts", "config.json"), nil
}

// Load reads and parses the config file at path. An empty path resolves
// to DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a config document and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StashWorkspace == "" {
		cfg.StashWorkspace = DefaultStashWorkspace
	}
	if cfg.Layouts == nil {
		cfg.Layouts = map[string]*Layout{}
	}
	return &cfg, nil
}

// Layout returns the named layout, or an error listing the available
// names when it does not exist.
func (c *Config) Layout(name string) (*Layout, error) {
	l, ok := c.Layouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q not found (available: %v)", name, c.LayoutNames())
	}
	return l, nil
}

// LayoutNames returns the configured layout names, sorted.
func (c *Config) LayoutNames() []string {
	names := make([]string, 0, len(c.Layouts))
	for name := range c.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
