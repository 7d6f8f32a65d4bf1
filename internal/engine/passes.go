package engine

import (
	"context"

	"github.com/mj1618/aerospace-layouts/internal/config"
	"github.com/mj1618/aerospace-layouts/internal/display"
)

// movePass moves every window in the tree into the target workspace,
// depth-first in declared order. The order matters: the reposition
// pass joins each window with its predecessor in this same order.
func (e *Engine) movePass(ctx context.Context, nodes []config.Node, workspace string) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *config.WindowNode:
			if w, ok := e.locateWindow(ctx, n.BundleID); ok {
				e.Log.Debug("moving window", "window", w.ID, "bundleId", n.BundleID, "workspace", workspace)
				e.WM.MoveToWorkspace(ctx, w.ID, workspace)
			}
		case *config.GroupNode:
			e.movePass(ctx, n.Windows, workspace)
		}
		e.throttle(ctx)
	}
}

// repositionPass rebuilds the workspace's spatial arrangement: flatten
// the existing tree, apply the workspace tiling mode to the first
// window, then join every non-first sibling with the window placed
// before it.
func (e *Engine) repositionPass(ctx context.Context, layout *config.Layout) {
	if len(layout.Windows) == 0 {
		return
	}
	e.WM.FlattenWorkspace(ctx, layout.Workspace)
	if bundleID, ok := firstBundleID(layout.Windows); ok {
		if w, found := e.workspaceWindow(ctx, layout.Workspace, bundleID); found {
			e.WM.SetLayout(ctx, string(layout.Mode), w.ID)
		} else {
			e.Log.Warn("first window not found in workspace, skipping tiling mode", "bundleId", bundleID)
		}
	}

	for i, node := range layout.Windows {
		e.repositionNode(ctx, node, i, layout.Workspace)
	}
}

// repositionNode joins a window with the preceding window in travel
// order whenever it is not the first child of its parent. The first
// child defines the (sub)tree's initial shape and joins nothing.
func (e *Engine) repositionNode(ctx context.Context, node config.Node, index int, workspace string) {
	switch n := node.(type) {
	case *config.WindowNode:
		if index > 0 {
			if w, found := e.workspaceWindow(ctx, workspace, n.BundleID); found {
				e.WM.Focus(ctx, w.ID)
				e.WM.JoinLeft(ctx, w.ID)
			} else {
				e.Log.Warn("window not found in workspace, skipping join", "bundleId", n.BundleID)
			}
		}
	case *config.GroupNode:
		for i, child := range n.Windows {
			e.repositionNode(ctx, child, i, workspace)
		}
	}
	e.throttle(ctx)
}

// resizePass applies fractional size hints. A window sizes along its
// parent's orientation (the layout's orientation at top level); a
// group sizes along its own orientation, realized by resizing the
// group's first window.
func (e *Engine) resizePass(ctx context.Context, nodes []config.Node, parent config.Orientation, workspace string, disp display.Info) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *config.WindowNode:
			if n.Size != nil {
				e.resizeBundle(ctx, workspace, n.BundleID, parent.Dimension(), *n.Size, disp)
			}
		case *config.GroupNode:
			if n.Size != nil {
				if bundleID, ok := firstBundleID(n.Windows); ok {
					e.resizeBundle(ctx, workspace, bundleID, n.Orientation.Dimension(), *n.Size, disp)
				} else {
					e.Log.Error("group with size has no windows, skipping resize")
				}
			}
			e.resizePass(ctx, n.Windows, n.Orientation, workspace, disp)
		}
		e.throttle(ctx)
	}
}

// resizeBundle converts a size fraction to absolute pixels against the
// display dimension and resizes the bundle's window in the workspace.
func (e *Engine) resizeBundle(ctx context.Context, workspace, bundleID, dimension string, size config.Size, disp display.Info) {
	extent := disp.Dimension(dimension)
	if extent == 0 || size.Num == 0 || size.Den == 0 {
		e.Log.Error("cannot compute size, skipping resize",
			"bundleId", bundleID, "dimension", dimension, "extent", extent, "size", size)
		return
	}
	px := extent * size.Num / size.Den
	w, found := e.workspaceWindow(ctx, workspace, bundleID)
	if !found {
		e.Log.Error("window not found in workspace, skipping resize", "bundleId", bundleID)
		return
	}
	e.Log.Debug("resizing window", "window", w.ID, "bundleId", bundleID, "dimension", dimension, "px", px)
	e.WM.Resize(ctx, dimension, px, w.ID)
}
