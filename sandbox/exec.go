// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Exit codes produced by fossbox itself rather than by the child.
const (
	// ExitUsage is returned when no command was supplied.
	ExitUsage = 2

	// ExitLaunchFailure is returned when the command could not be
	// spawned at all (missing executable, permission denied).
	ExitLaunchFailure = 127

	// exitSignalBase is added to the signal number when the child is
	// killed by a signal, following the shell convention.
	exitSignalBase = 128
)

// DefaultKillGrace is how long a cancelled child has to exit after
// SIGTERM before it is killed.
const DefaultKillGrace = 10 * time.Second

// ErrNoCommand is returned when a run has an empty command vector.
var ErrNoCommand = errors.New("no command given")

// Executor spawns a plan's command and waits for it.
type Executor struct {
	// Stdin, Stdout and Stderr are connected to the child. Nil means
	// the corresponding stream of this process.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// KillGrace bounds the wait after forwarding SIGTERM on
	// cancellation. Zero means DefaultKillGrace.
	KillGrace time.Duration

	// Logger for execution events.
	Logger *slog.Logger
}

// Execute runs the plan and returns the child's exit code. A non-zero
// exit is logged as a warning and is not an error. The returned error
// is non-nil only when the command could not be spawned.
//
// When ctx is cancelled the child receives SIGTERM, then SIGKILL after
// KillGrace.
func (e *Executor) Execute(ctx context.Context, plan Plan) (int, error) {
	if len(plan.Command) == 0 {
		return ExitUsage, ErrNoCommand
	}
	logger := e.logger()

	cmd := exec.CommandContext(ctx, plan.Command[0], plan.Command[1:]...)
	cmd.Dir = plan.Dir
	if plan.Env != nil {
		// Environ includes PWD for cmd.Dir; the overlay wins over
		// inherited values because later entries take precedence.
		cmd.Env = append(cmd.Environ(), plan.Env...)
	}
	cmd.Stdin = orReader(e.Stdin, os.Stdin)
	cmd.Stdout = orWriter(e.Stdout, os.Stdout)
	cmd.Stderr = orWriter(e.Stderr, os.Stderr)
	cmd.Cancel = func() error {
		logger.Warn("interrupted, forwarding SIGTERM to command", "pid", cmd.Process.Pid)
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = e.KillGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultKillGrace
	}

	logger.Debug("spawning command", "mode", plan.Mode.String(), "argv", plan.Command, "dir", plan.Dir)

	runErr := cmd.Run()
	if cmd.ProcessState == nil {
		return ExitLaunchFailure, fmt.Errorf("launching %s: %w", plan.Command[0], runErr)
	}

	code := exitCode(cmd.ProcessState)
	switch {
	case code == 0:
		logger.Info("command finished", "exit_code", code)
	case isSignaled(cmd.ProcessState):
		status := cmd.ProcessState.Sys().(syscall.WaitStatus)
		logger.Warn("command killed by signal",
			"signal", unix.SignalName(status.Signal()),
			"exit_code", code,
		)
	default:
		logger.Warn("command exited with non-zero status", "exit_code", code)
	}
	return code, nil
}

// exitCode extracts the exit status, mapping death by signal to
// 128+signal.
func exitCode(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return exitSignalBase + int(status.Signal())
	}
	return state.ExitCode()
}

func isSignaled(state *os.ProcessState) bool {
	status, ok := state.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func orReader(r io.Reader, fallback *os.File) io.Reader {
	if r == nil {
		return fallback
	}
	return r
}

func orWriter(w io.Writer, fallback *os.File) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
