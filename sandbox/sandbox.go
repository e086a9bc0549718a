// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// RunOptions describes one run. It is not modified by the run.
type RunOptions struct {
	// Command is the command vector; Command[0] is the executable. It is
	// passed to the spawn call verbatim, without shell interpretation.
	Command []string

	// Limits are the requested resource limits.
	Limits Limits

	// Save lists glob patterns, relative to the workspace, of files to
	// keep after the run.
	Save []string

	// Destination is the directory saved files are copied into. Empty
	// means the current directory.
	Destination string

	// DryRun prints the launch plan instead of executing it.
	DryRun bool
}

// Config holds configuration for creating a new Runner.
type Config struct {
	// TempRoot is the parent for ordinary workspaces. Empty means the
	// system temp directory.
	TempRoot string

	// CacheRoot is the parent for RAM-disk workspaces. Empty means
	// DefaultCacheRoot().
	CacheRoot string

	// Launcher is the systemd-run executable. Empty means DefaultLauncher.
	Launcher string

	// ScratchVariable is the temp-dir environment variable given to the
	// child. Empty means "TMPDIR".
	ScratchVariable string

	// ScratchMount is the private tmpfs mount point in serviced mode.
	// Empty means "/tmp".
	ScratchMount string

	// Prober decides whether the isolation service is usable. Nil
	// means a LauncherProbe for Launcher.
	Prober Prober

	// Compression applied to saved artifacts.
	Compression Compression

	// KillGrace bounds the wait for an interrupted child.
	KillGrace time.Duration

	// Stdin, Stdout and Stderr are connected to the child. Nil means
	// the streams of this process. Dry-run output goes to Stdout.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Logger for run status messages.
	Logger *slog.Logger
}

// Runner sequences a run: acquire a workspace, plan the launch,
// execute, harvest, and release the workspace.
type Runner struct {
	config     Config
	workspaces *WorkspaceManager
	planner    Planner
	prober     Prober
	logger     *slog.Logger
}

// New creates a new Runner.
func New(config Config) *Runner {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prober := config.Prober
	if prober == nil {
		prober = LauncherProbe{Launcher: config.Launcher}
	}

	return &Runner{
		config: config,
		workspaces: &WorkspaceManager{
			TempRoot:  config.TempRoot,
			CacheRoot: config.CacheRoot,
			Logger:    logger,
		},
		planner: Planner{
			Launcher:        config.Launcher,
			ScratchVariable: config.ScratchVariable,
			ScratchMount:    config.ScratchMount,
		},
		prober: prober,
		logger: logger,
	}
}

// Run executes one run and returns the exit code the process should
// exit with: the child's own exit code, ExitUsage when options carry no
// command, or ExitLaunchFailure when the command could not be spawned.
//
// The workspace is released on every path. A release failure is logged
// as a warning and does not affect the exit code. Harvest problems are
// likewise logged and never change the exit code.
func (r *Runner) Run(ctx context.Context, options RunOptions) (int, error) {
	if len(options.Command) == 0 {
		return ExitUsage, ErrNoCommand
	}

	id := NewRunID()
	logger := r.logger.With("run", id.String())

	workspace, err := r.workspaces.Acquire(id, options.Limits.HasRAMDisk())
	if err != nil {
		return 1, err
	}
	defer func() {
		if releaseErr := r.workspaces.Release(workspace); releaseErr != nil {
			logger.Warn("workspace cleanup failed", "error", releaseErr)
		}
	}()

	logger.Info("workspace ready", "path", workspace.Dir)
	logger.Info("limits",
		"cpus", options.Limits.CPUs,
		"cpu_quota", CPUQuota(options.Limits.CPUs),
		"memory_max", options.Limits.MemoryMax,
		"timeout_seconds", options.Limits.Timeout,
		"ram_disk", options.Limits.RAMDisk,
	)

	plan := r.planner.Plan(id, options.Command, options.Limits, workspace.Dir, r.prober.IsolationAvailable())
	for _, warning := range plan.Warnings {
		logger.Warn(warning)
	}
	logger.Info("launch mode", "mode", plan.Mode.String())
	logger.Debug("launch command", "command", plan.Describe())

	if options.DryRun {
		r.printPlan(plan)
		return 0, nil
	}

	executor := &Executor{
		Stdin:     r.config.Stdin,
		Stdout:    r.config.Stdout,
		Stderr:    r.config.Stderr,
		KillGrace: r.config.KillGrace,
		Logger:    logger,
	}
	exitCode, execErr := executor.Execute(ctx, plan)
	if execErr != nil {
		logger.Error("command could not be started", "error", execErr)
	}

	destination := options.Destination
	if destination == "" {
		destination = "."
	}
	harvester := &Harvester{
		RunID:       id,
		Compression: r.config.Compression,
		Logger:      logger,
	}
	copied, harvestErr := harvester.Harvest(workspace.Dir, options.Save, destination)
	if harvestErr != nil {
		logger.Warn("harvest failed", "error", harvestErr)
	}
	if len(options.Save) > 0 {
		logger.Info("artifacts saved", "count", copied, "dest", destination)
	}

	return exitCode, nil
}

// printPlan writes the plan in a shell-like layout, one argument per
// continuation line.
func (r *Runner) printPlan(plan Plan) {
	w := r.config.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "# mode: %s\n", plan.Mode)
	if plan.Dir != "" {
		fmt.Fprintf(w, "# dir: %s\n", plan.Dir)
	}
	for _, variable := range plan.Env {
		fmt.Fprintf(w, "# env: %s\n", variable)
	}
	fmt.Fprintln(w, strings.Join(plan.Command, " \\\n  "))
}
