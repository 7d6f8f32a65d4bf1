package engine

import (
	"context"
	"time"

	"github.com/mj1618/aerospace-layouts/internal/wm"
)

const (
	windowPollAttempts = 30
	windowPollInterval = 100 * time.Millisecond
)

// waitFor polls fn at the given interval until it reports true or the
// attempt budget is exhausted.
func waitFor(ctx context.Context, attempts int, interval time.Duration, fn func() bool) bool {
	for i := 0; i < attempts; i++ {
		if fn() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return false
}

// locateWindow finds a live window for the bundle id, launching the
// application first when it is not running. A window that never
// appears is not fatal; the caller skips that node.
func (e *Engine) locateWindow(ctx context.Context, bundleID string) (wm.Window, bool) {
	if !e.Apps.IsRunning(ctx, bundleID) {
		e.Log.Debug("application not running, launching", "bundleId", bundleID)
		if !e.Apps.Open(ctx, bundleID) {
			e.Log.Warn("failed to launch application", "bundleId", bundleID)
		}
	}

	var found wm.Window
	ok := waitFor(ctx, windowPollAttempts, windowPollInterval, func() bool {
		windows, err := e.WM.BundleWindows(ctx, bundleID)
		if err != nil || len(windows) == 0 {
			return false
		}
		found = windows[0]
		return true
	})
	if !ok {
		e.Log.Warn("no window appeared for application", "bundleId", bundleID)
		return wm.Window{}, false
	}
	return found, true
}
