// Package display enumerates the machine's displays and resolves a
// layout's display specifier to a single target display.
package display

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Info describes one physical display for a single run. The selected
// display's Width/Height are the sizing reference for the whole layout
// tree.
type Info struct {
	ID       int    `yaml:"id"       json:"id"`
	Name     string `yaml:"name"     json:"name"`
	Width    int    `yaml:"width"    json:"width"`
	Height   int    `yaml:"height"   json:"height"`
	Main     bool   `yaml:"main"     json:"main"`
	Internal bool   `yaml:"internal" json:"internal"`
}

// Dimension returns the pixel extent of the named dimension ("width"
// or "height").
func (d Info) Dimension(name string) int {
	if name == "height" {
		return d.Height
	}
	return d.Width
}

// Display specifier aliases.
const (
	AliasMain      = "main"
	AliasSecondary = "secondary"
	AliasExternal  = "external"
	AliasInternal  = "internal"
)

// system_profiler sentinel values.
const (
	sentinelMain     = "spdisplays_yes"
	sentinelInternal = "spdisplays_internal"
)

// profilerReport mirrors `system_profiler SPDisplaysDataType -json`:
// one entry per GPU, each carrying its attached displays.
type profilerReport struct {
	SPDisplaysDataType []struct {
		Displays []rawDisplay `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

type rawDisplay struct {
	Name           string `json:"_name"`
	DisplayID      string `json:"_spdisplays_displayID"`
	Resolution     string `json:"_spdisplays_resolution"`
	Pixels         string `json:"_spdisplays_pixels"`
	Main           string `json:"spdisplays_main"`
	ConnectionType string `json:"spdisplays_connection_type"`
}

// queryRunner is the subset of the command runner the lister needs.
type queryRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Lister enumerates displays by querying system_profiler.
type Lister struct {
	Runner queryRunner
	Log    *log.Logger
}

// List queries the OS for the currently attached displays.
func (l *Lister) List(ctx context.Context) ([]Info, error) {
	out, err := l.Runner.Output(ctx, "system_profiler", "SPDisplaysDataType", "-json")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	return parseReport(out)
}

// parseReport decodes the profiler JSON into display descriptors.
func parseReport(data []byte) ([]Info, error) {
	var report profilerReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse display report: %w", err)
	}
	var displays []Info
	for _, gpu := range report.SPDisplaysDataType {
		for _, raw := range gpu.Displays {
			info := Info{
				Name:     raw.Name,
				Main:     raw.Main == sentinelMain,
				Internal: raw.ConnectionType == sentinelInternal,
			}
			if id, err := strconv.Atoi(raw.DisplayID); err == nil {
				info.ID = id
			}
			res := raw.Resolution
			if res == "" {
				res = raw.Pixels
			}
			info.Width, info.Height = parseResolution(res)
			displays = append(displays, info)
		}
	}
	return displays, nil
}

// parseResolution parses "<W> x <H>[ @ <Hz>]" pixel strings, e.g.
// "2560 x 1440 @ 60.00Hz". Missing or malformed strings yield 0x0.
func parseResolution(s string) (width, height int) {
	parts := strings.Split(s, " x ")
	if len(parts) != 2 {
		return 0, 0
	}
	width, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	rest := parts[1]
	if idx := strings.Index(rest, " @ "); idx >= 0 {
		rest = rest[:idx]
	}
	height, _ = strconv.Atoi(strings.TrimSpace(rest))
	return width, height
}

// Resolve picks exactly one display for spec. An empty spec targets the
// main display; aliases (main, secondary, external, internal) apply
// their selection rules; a numeric spec matches by display ID; anything
// else is a case-insensitive regular expression over display names.
// Misses on numeric and pattern specs fall back to the main display
// with a warning; ambiguous aliases are an error.
func Resolve(displays []Info, spec string, logger *log.Logger) (Info, error) {
	if len(displays) == 0 {
		return Info{}, fmt.Errorf("no displays found")
	}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return resolveAlias(displays, AliasMain, logger)
	}

	switch spec {
	case AliasMain, AliasSecondary, AliasExternal, AliasInternal:
		return resolveAlias(displays, spec, logger)
	}

	if id, err := strconv.ParseFloat(spec, 64); err == nil && !math.IsInf(id, 0) && !math.IsNaN(id) {
		for _, d := range displays {
			if d.ID == int(id) {
				return d, nil
			}
		}
		logger.Warn("no display with matching id, falling back to main", "id", spec)
		return resolveAlias(displays, AliasMain, logger)
	}

	re, err := regexp.Compile("(?i)" + spec)
	if err == nil {
		for _, d := range displays {
			if re.MatchString(d.Name) {
				return d, nil
			}
		}
	}
	logger.Warn("no display with matching name, falling back to main", "pattern", spec)
	return resolveAlias(displays, AliasMain, logger)
}

func resolveAlias(displays []Info, alias string, logger *log.Logger) (Info, error) {
	switch alias {
	case AliasMain:
		for _, d := range displays {
			if d.Main {
				return d, nil
			}
		}
		return Info{}, fmt.Errorf("no main display found")

	case AliasSecondary:
		var others []Info
		for _, d := range displays {
			if !d.Main {
				others = append(others, d)
			}
		}
		switch len(others) {
		case 0:
			logger.Warn("no secondary display, falling back to main")
			return resolveAlias(displays, AliasMain, logger)
		case 1:
			return others[0], nil
		default:
			return Info{}, fmt.Errorf("%d non-main displays found, use a display name or id to disambiguate", len(others))
		}

	case AliasExternal:
		var externals []Info
		for _, d := range displays {
			if !d.Internal {
				externals = append(externals, d)
			}
		}
		switch len(externals) {
		case 0:
			logger.Warn("no external display, falling back to main")
			return resolveAlias(displays, AliasMain, logger)
		case 1:
			return externals[0], nil
		default:
			return Info{}, fmt.Errorf("%d external displays found, use a display name or id to disambiguate", len(externals))
		}

	case AliasInternal:
		for _, d := range displays {
			if d.Internal {
				return d, nil
			}
		}
		return Info{}, fmt.Errorf("no internal display found")
	}
	return Info{}, fmt.Errorf("unknown display alias: %q", alias)
}
