// Package runner executes external commands with a timeout, a retry
// policy, and graceful-then-forced termination. It is the primitive
// every window-manager and OS invocation in this tool goes through.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultTimeout bounds one command attempt.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxRetries is the total number of attempts for a command
	// whose timeout keeps firing.
	DefaultMaxRetries = 2
	// killGrace is how long a timed-out process gets between SIGTERM
	// and SIGKILL.
	killGrace = 100 * time.Millisecond
	// backoffStep scales linearly with the attempt number: attempt 2
	// waits 1000ms, attempt 3 waits 1500ms.
	backoffStep = 500 * time.Millisecond
)

// Command describes one external command invocation.
type Command struct {
	// Args is the argument vector; Args[0] is the executable.
	Args []string
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Optional marks a command whose failure should not be treated as
	// a problem by the caller. Optional commands are not retried on
	// timeout and their failures log at warn instead of error.
	Optional bool
	// MaxRetries is the total attempt budget. Zero means DefaultMaxRetries.
	MaxRetries int
}

// Runner runs commands and logs their failures.
type Runner struct {
	Log *log.Logger
}

// New creates a Runner that logs through logger.
func New(logger *log.Logger) *Runner {
	return &Runner{Log: logger}
}

// attempt outcomes.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeTimeout
	outcomeExit
	outcomeSpawn
)

// Run executes cmd and reports whether it is safe to proceed. It never
// returns an error: success is true, and a failure's return value
// equals cmd.Optional, so an optional command's failure reads as
// "continue" while a required command's failure reads as "problem".
//
// Attempts that time out are killed (SIGTERM, then SIGKILL after a
// short grace period) and retried with linear backoff while attempts
// remain, unless the command is optional. Ordinary non-zero exits are
// never retried; their stderr is logged and the run gives up.
func (r *Runner) Run(ctx context.Context, cmd Command) bool {
	if len(cmd.Args) == 0 {
		r.Log.Error("empty command")
		return cmd.Optional
	}
	retries := cmd.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt) * backoffStep
			r.Log.Debug("retrying command", "args", strings.Join(cmd.Args, " "), "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return cmd.Optional
			case <-time.After(backoff):
			}
		}

		switch r.runOnce(ctx, cmd, timeout) {
		case outcomeOK:
			return true
		case outcomeTimeout:
			// Only timeout-kills are worth retrying; give up right
			// away for optional commands.
			if cmd.Optional || attempt == retries {
				return cmd.Optional
			}
		case outcomeExit:
			return cmd.Optional
		case outcomeSpawn:
			if attempt == retries {
				return cmd.Optional
			}
		}
	}
	return cmd.Optional
}

// runOnce performs a single attempt. The subprocess is reaped on every
// path before runOnce returns.
func (r *Runner) runOnce(ctx context.Context, cmd Command, timeout time.Duration) outcome {
	proc := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	var stderr bytes.Buffer
	proc.Stderr = &stderr

	if err := proc.Start(); err != nil {
		r.Log.Warn("failed to start command", "args", strings.Join(cmd.Args, " "), "err", err)
		return outcomeSpawn
	}

	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false
	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		waitErr = r.terminate(proc, done)
	case <-ctx.Done():
		timedOut = true
		waitErr = r.terminate(proc, done)
	}

	if waitErr == nil {
		return outcomeOK
	}

	if timedOut && killedBySignal(waitErr) {
		r.Log.Debug("command timed out", "args", strings.Join(cmd.Args, " "), "timeout", timeout)
		return outcomeTimeout
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = waitErr.Error()
		}
		if cmd.Optional {
			r.Log.Warn("optional command failed", "args", strings.Join(cmd.Args, " "), "stderr", msg)
		} else {
			r.Log.Error("command failed", "args", strings.Join(cmd.Args, " "), "stderr", msg)
		}
		return outcomeExit
	}

	r.Log.Warn("command error", "args", strings.Join(cmd.Args, " "), "err", waitErr)
	return outcomeSpawn
}

// terminate asks the process to stop, escalates to SIGKILL after the
// grace period, and waits for the reap.
func (r *Runner) terminate(proc *exec.Cmd, done chan error) error {
	_ = proc.Process.Signal(syscall.SIGTERM)
	kill := time.AfterFunc(killGrace, func() {
		_ = proc.Process.Kill()
	})
	defer kill.Stop()
	return <-done
}

// killedBySignal reports whether the wait error corresponds to the
// timeout kill: terminated by SIGTERM or SIGKILL (the conventional
// 143/137 exit statuses).
func killedBySignal(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := ws.Signal()
		return sig == syscall.SIGTERM || sig == syscall.SIGKILL
	}
	switch exitErr.ExitCode() {
	case 137, 143: // SIGKILL, SIGTERM via an intermediate shell
		return true
	}
	return false
}

// Output runs a query command and returns its stdout. Queries carry no
// retry policy: they either produce data or fail with an error the
// caller decides about. Stderr is folded into the error for context.
func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	proc := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr
	if err := proc.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %s (%w)", name, msg, err)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}
