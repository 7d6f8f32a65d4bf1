// Package engine applies a declarative layout tree to the live window
// manager: it resolves the target display, clears the target workspace,
// and runs the move, reposition, and resize passes over the tree.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mj1618/aerospace-layouts/internal/apps"
	"github.com/mj1618/aerospace-layouts/internal/config"
	"github.com/mj1618/aerospace-layouts/internal/display"
	"github.com/mj1618/aerospace-layouts/internal/wm"
)

// DefaultDelay is the pause after every node visited in every pass,
// throttling the window manager.
const DefaultDelay = 50 * time.Millisecond

// DisplayLister enumerates the attached displays.
type DisplayLister interface {
	List(ctx context.Context) ([]display.Info, error)
}

// Engine drives one layout application. It holds no window-manager
// state between operations; live state is re-queried whenever needed.
type Engine struct {
	WM       wm.Client
	Apps     apps.Lifecycle
	Displays DisplayLister
	Log      *log.Logger
	// Delay throttles consecutive window-manager operations.
	Delay time.Duration
}

// New creates an engine with the default inter-operation delay.
func New(client wm.Client, lifecycle apps.Lifecycle, displays DisplayLister, logger *log.Logger) *Engine {
	return &Engine{
		WM:       client,
		Apps:     lifecycle,
		Displays: displays,
		Log:      logger,
		Delay:    DefaultDelay,
	}
}

// Apply applies the layout. Only configuration problems (no display
// selectable) are fatal; every per-window failure is logged and the
// traversal continues.
func (e *Engine) Apply(ctx context.Context, layout *config.Layout, stash string) error {
	displays, err := e.Displays.List(ctx)
	if err != nil {
		return err
	}
	disp, err := display.Resolve(displays, layout.Display, e.Log)
	if err != nil {
		return fmt.Errorf("no display selectable: %w", err)
	}
	e.Log.Debug("applying layout", "workspace", layout.Workspace, "display", disp.Name, "width", disp.Width, "height", disp.Height)

	e.clearWorkspace(ctx, layout.Workspace, stash)
	e.movePass(ctx, layout.Windows, layout.Workspace)
	e.repositionPass(ctx, layout)
	e.WM.SwitchWorkspace(ctx, layout.Workspace)
	e.resizePass(ctx, layout.Windows, layout.Orientation, layout.Workspace, disp)
	return nil
}

// clearWorkspace parks every window currently in the target workspace
// in the stash workspace.
func (e *Engine) clearWorkspace(ctx context.Context, workspace, stash string) {
	windows, err := e.WM.WorkspaceWindows(ctx, workspace)
	if err != nil {
		e.Log.Warn("failed to list workspace windows, skipping clear", "workspace", workspace, "err", err)
		return
	}
	for _, w := range windows {
		e.Log.Debug("stashing window", "window", w.ID, "app", w.App, "stash", stash)
		e.WM.MoveToWorkspace(ctx, w.ID, stash)
		e.throttle(ctx)
	}
}

// workspaceWindow looks up the live window for a bundle id inside a
// workspace. Windows are resolved fresh on every call because they may
// move during the run.
func (e *Engine) workspaceWindow(ctx context.Context, workspace, bundleID string) (wm.Window, bool) {
	windows, err := e.WM.WorkspaceWindows(ctx, workspace)
	if err != nil {
		e.Log.Error("failed to list workspace windows", "workspace", workspace, "err", err)
		return wm.Window{}, false
	}
	for _, w := range windows {
		if w.BundleID == bundleID {
			return w, true
		}
	}
	return wm.Window{}, false
}

// firstBundleID returns the bundle id of the first window node in tree
// order, depth-first.
func firstBundleID(nodes []config.Node) (string, bool) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *config.WindowNode:
			return n.BundleID, true
		case *config.GroupNode:
			if id, ok := firstBundleID(n.Windows); ok {
				return id, true
			}
		}
	}
	return "", false
}

// throttle pauses between window-manager operations.
func (e *Engine) throttle(ctx context.Context) {
	if e.Delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.Delay):
	}
}
