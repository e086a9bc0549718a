// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"os/exec"
	"strings"
)

// DefaultLauncher is the isolation service launcher looked up on PATH.
const DefaultLauncher = "systemd-run"

// Prober reports whether the isolation service can be used.
type Prober interface {
	IsolationAvailable() bool
}

// LauncherProbe finds the launcher executable on PATH. It does no
// caching; a process handles a single run.
type LauncherProbe struct {
	// Launcher is the executable name. Empty means DefaultLauncher.
	Launcher string
}

// IsolationAvailable reports whether the launcher is on PATH.
func (p LauncherProbe) IsolationAvailable() bool {
	_, err := exec.LookPath(p.launcher())
	return err == nil
}

func (p LauncherProbe) launcher() string {
	if p.Launcher == "" {
		return DefaultLauncher
	}
	return p.Launcher
}

// StaticProbe is a Prober with a fixed answer.
type StaticProbe bool

// IsolationAvailable returns the fixed answer.
func (p StaticProbe) IsolationAvailable() bool {
	return bool(p)
}

// Capabilities describes what isolation features the host offers. It
// is a richer, slower probe than LauncherProbe and backs the check
// command rather than the run path.
type Capabilities struct {
	// LauncherAvailable is true if the launcher is on PATH.
	LauncherAvailable bool

	// LauncherPath is the resolved launcher path.
	LauncherPath string

	// LauncherVersion is the first line of `launcher --version`.
	LauncherVersion string

	// UserScopesWork is true if a transient user scope can be created.
	UserScopesWork bool

	// CgroupV2 is true if /sys/fs/cgroup is a cgroup2 filesystem.
	CgroupV2 bool
}

// DetectCapabilities probes the host for the given launcher.
func DetectCapabilities(launcher string) *Capabilities {
	if launcher == "" {
		launcher = DefaultLauncher
	}
	caps := &Capabilities{}

	if path, err := exec.LookPath(launcher); err == nil {
		caps.LauncherAvailable = true
		caps.LauncherPath = path

		if out, err := exec.Command(path, "--version").Output(); err == nil {
			firstLine, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
			caps.LauncherVersion = firstLine
		}

		// Try to create a user scope.
		cmd := exec.Command(path, "--user", "--scope", "--quiet", "--", "true")
		if err := cmd.Run(); err == nil {
			caps.UserScopesWork = true
		}
	}

	caps.CgroupV2 = isCgroupV2("/sys/fs/cgroup")

	return caps
}

// CanEnforceLimits reports whether Scoped or Serviced mode will work.
func (c *Capabilities) CanEnforceLimits() bool {
	return c.LauncherAvailable && c.UserScopesWork
}

// SkipReason returns a human-readable reason why limits cannot be
// enforced, or empty string if they can.
func (c *Capabilities) SkipReason() string {
	if !c.LauncherAvailable {
		return "systemd-run not installed"
	}
	if !c.UserScopesWork {
		return "systemd-run cannot create user scopes (no user session bus?)"
	}
	return ""
}
