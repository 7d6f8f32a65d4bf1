// Package wm exposes the window-manager operations the layout engine
// needs. The Client interface is what the engine consumes; Aerospace is
// the production implementation driving the aerospace CLI.
package wm

import "context"

// Window is one live window record as reported by the window manager.
type Window struct {
	ID       int    `json:"window-id"       yaml:"window-id"`
	App      string `json:"app-name"        yaml:"app-name"`
	Title    string `json:"window-title"    yaml:"window-title"`
	BundleID string `json:"app-bundle-id"   yaml:"app-bundle-id"`
}

// Client is the window-manager surface used by the engine. Mutating
// operations return a boolean "safe to proceed" outcome rather than an
// error; the engine logs and continues on failures.
type Client interface {
	// WorkspaceWindows lists the windows currently in a workspace.
	WorkspaceWindows(ctx context.Context, workspace string) ([]Window, error)
	// BundleWindows lists windows of one application across all monitors.
	BundleWindows(ctx context.Context, bundleID string) ([]Window, error)
	// MoveToWorkspace moves a window into a workspace, following focus.
	MoveToWorkspace(ctx context.Context, windowID int, workspace string) bool
	// FlattenWorkspace collapses a workspace's tree to a flat list.
	FlattenWorkspace(ctx context.Context, workspace string) bool
	// SetLayout applies a tiling mode to the workspace containing the window.
	SetLayout(ctx context.Context, mode string, windowID int) bool
	// Focus focuses a window.
	Focus(ctx context.Context, windowID int) bool
	// JoinLeft joins a window with its left neighbor.
	JoinLeft(ctx context.Context, windowID int) bool
	// Resize sets a window's width or height to an absolute pixel value.
	Resize(ctx context.Context, dimension string, px int, windowID int) bool
	// SwitchWorkspace makes a workspace active.
	SwitchWorkspace(ctx context.Context, workspace string) bool
}
