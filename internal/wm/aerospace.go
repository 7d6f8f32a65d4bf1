package wm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mj1618/aerospace-layouts/internal/runner"
)

// aerospaceBin is the window-manager CLI driven by this tool.
const aerospaceBin = "aerospace"

// listFormat selects the per-window fields for list queries.
const listFormat = "%{window-id} %{app-name} %{window-title} %{app-bundle-id}"

// commandRunner is the subset of the runner Aerospace needs.
type commandRunner interface {
	Run(ctx context.Context, cmd runner.Command) bool
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Aerospace drives the aerospace CLI through the resilient runner.
type Aerospace struct {
	Runner commandRunner
	// Timeout bounds each mutating command attempt. Zero uses the
	// runner default.
	Timeout time.Duration
}

// NewAerospace creates a client on top of r.
func NewAerospace(r *runner.Runner) *Aerospace {
	return &Aerospace{Runner: r}
}

func (a *Aerospace) run(ctx context.Context, optional bool, args ...string) bool {
	return a.Runner.Run(ctx, runner.Command{
		Args:     append([]string{aerospaceBin}, args...),
		Timeout:  a.Timeout,
		Optional: optional,
	})
}

func (a *Aerospace) list(ctx context.Context, args ...string) ([]Window, error) {
	args = append(args, "--format", listFormat, "--json")
	out, err := a.Runner.Output(ctx, aerospaceBin, args...)
	if err != nil {
		return nil, err
	}
	var windows []Window
	if err := json.Unmarshal(out, &windows); err != nil {
		return nil, fmt.Errorf("failed to parse window list: %w", err)
	}
	return windows, nil
}

func (a *Aerospace) WorkspaceWindows(ctx context.Context, workspace string) ([]Window, error) {
	return a.list(ctx, "list-windows", "--workspace", workspace)
}

func (a *Aerospace) BundleWindows(ctx context.Context, bundleID string) ([]Window, error) {
	return a.list(ctx, "list-windows", "--monitor", "all", "--app-bundle-id", bundleID)
}

func (a *Aerospace) MoveToWorkspace(ctx context.Context, windowID int, workspace string) bool {
	return a.run(ctx, false,
		"move-node-to-workspace", workspace,
		"--window-id", strconv.Itoa(windowID),
		"--focus-follows-window")
}

func (a *Aerospace) FlattenWorkspace(ctx context.Context, workspace string) bool {
	return a.run(ctx, false, "flatten-workspace-tree", "--workspace", workspace)
}

func (a *Aerospace) SetLayout(ctx context.Context, mode string, windowID int) bool {
	return a.run(ctx, false, "layout", mode, "--window-id", strconv.Itoa(windowID))
}

// Focus is optional: a window that cannot be focused should not stall
// the rest of the traversal.
func (a *Aerospace) Focus(ctx context.Context, windowID int) bool {
	return a.run(ctx, true, "focus", "--window-id", strconv.Itoa(windowID))
}

func (a *Aerospace) JoinLeft(ctx context.Context, windowID int) bool {
	return a.run(ctx, false, "join-with", "left", "--window-id", strconv.Itoa(windowID))
}

func (a *Aerospace) Resize(ctx context.Context, dimension string, px int, windowID int) bool {
	return a.run(ctx, false,
		"resize", dimension, strconv.Itoa(px),
		"--window-id", strconv.Itoa(windowID))
}

func (a *Aerospace) SwitchWorkspace(ctx context.Context, workspace string) bool {
	return a.run(ctx, false, "workspace", workspace)
}
