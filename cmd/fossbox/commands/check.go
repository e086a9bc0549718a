// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/fossbox/fossbox/cmd/fossbox/cli"
	"github.com/fossbox/fossbox/sandbox"
)

func checkCommand(options Options) *cli.Command {
	return &cli.Command{
		Name:    "check",
		Summary: "Report which isolation features this host supports",
		Description: `Probe the host the way a run would and report the result: whether
systemd-run is installed and can create user scopes, whether cgroup
v2 is mounted, whether the workspace roots are writable, and whether
the configured default limits parse.

Missing isolation is a warning, since runs still work without limits.
Exits 1 if any check fails.`,
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Usagef("check takes no arguments, got %q", args[0])
			}
			return runCheck(options)
		},
	}
}

func runCheck(options Options) error {
	cfg := options.Config

	validator := sandbox.NewValidator()
	validator.ValidateCapabilities(sandbox.DetectCapabilities(cfg.Isolation.Launcher))
	validator.ValidateDirectory("temp-root", cfg.Paths.TempRoot)

	cacheRoot := cfg.Paths.CacheRoot
	if cacheRoot == "" {
		cacheRoot = sandbox.DefaultCacheRoot()
	}
	validator.ValidateDirectory("cache-root", cacheRoot)

	validator.ValidateLimits(sandbox.Limits{
		CPUs:      cfg.Defaults.CPUs,
		MemoryMax: cfg.Defaults.Memory,
		Timeout:   cfg.Defaults.Timeout,
		RAMDisk:   cfg.Defaults.RAMDisk,
	})

	validator.PrintResults(options.stdout())
	if validator.HasErrors() {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
