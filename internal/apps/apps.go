// Package apps queries and controls application lifecycle: whether an
// app is running, and launching it when it is not.
package apps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mj1618/aerospace-layouts/internal/runner"
)

// Lifecycle is the application-lifecycle surface the engine's window
// locator needs.
type Lifecycle interface {
	// IsRunning reports whether the application is currently running.
	IsRunning(ctx context.Context, bundleID string) bool
	// Open asks the OS to launch the application.
	Open(ctx context.Context, bundleID string) bool
}

// commandRunner is the subset of the runner this package needs.
type commandRunner interface {
	Run(ctx context.Context, cmd runner.Command) bool
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Launcher implements Lifecycle with the macOS open command and an
// osascript running-state query.
type Launcher struct {
	Runner commandRunner
	Log    *log.Logger
}

// IsRunning asks AppleScript whether an application with the bundle id
// is running. Query failures are treated as "not running" so the
// caller falls through to launching.
func (l *Launcher) IsRunning(ctx context.Context, bundleID string) bool {
	script := fmt.Sprintf("application id %q is running", bundleID)
	out, err := l.Runner.Output(ctx, "osascript", "-e", script)
	if err != nil {
		l.Log.Debug("running-state query failed", "bundleId", bundleID, "err", err)
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// Open launches the application via `open -b`.
func (l *Launcher) Open(ctx context.Context, bundleID string) bool {
	return l.Runner.Run(ctx, runner.Command{
		Args:    []string{"open", "-b", bundleID},
		Timeout: 10 * time.Second,
	})
}
