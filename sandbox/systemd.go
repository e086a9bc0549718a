// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

// SystemdRun builds systemd-run invocations that place a command in a
// transient, resource-controlled unit.
type SystemdRun struct {
	// Launcher is the systemd-run executable (name or path).
	Launcher string

	// Unit is the transient unit name (e.g., "fossbox-1a2b3c4d").
	Unit string

	// Limits defines the resource limits.
	Limits Limits

	// User runs the unit in the user's service manager (--user flag).
	User bool
}

// NewSystemdRun creates a builder for a user unit.
func NewSystemdRun(launcher, unit string, limits Limits) *SystemdRun {
	if launcher == "" {
		launcher = DefaultLauncher
	}
	return &SystemdRun{
		Launcher: launcher,
		Unit:     unit,
		Limits:   limits,
		User:     true,
	}
}

// ScopeCommand wraps cmd in a transient scope. A scope adopts the
// spawned process, so the caller keeps control of its working
// directory and environment.
func (s *SystemdRun) ScopeCommand(cmd []string) []string {
	args := s.prefix()
	args = append(args, "--scope", "--quiet")
	args = s.appendUnit(args)
	args = s.appendProperties(args)

	// Separator and original command.
	args = append(args, "--")
	return append(args, cmd...)
}

// ServiceCommand wraps cmd in a transient service with a private,
// size-capped tmpfs mounted at scratchMount. The service manager forks
// the child itself, so its working directory and scratch variable are
// passed as systemd-run parameters rather than set on the spawn call.
// --wait and --pipe keep the invocation blocking with stdio attached.
func (s *SystemdRun) ServiceCommand(cmd []string, workDir, scratchVariable, scratchMount string) []string {
	args := s.prefix()
	args = append(args, "--wait", "--pipe", "--quiet", "--collect")
	args = s.appendUnit(args)
	args = s.appendProperties(args)
	args = append(args,
		"--property=TemporaryFileSystem="+scratchMount+":rw,size="+s.Limits.RAMDisk,
		"--working-directory="+workDir,
		"--setenv="+scratchVariable+"="+scratchMount,
	)

	args = append(args, "--")
	return append(args, cmd...)
}

func (s *SystemdRun) prefix() []string {
	args := []string{s.Launcher}
	if s.User {
		args = append(args, "--user")
	}
	return args
}

func (s *SystemdRun) appendUnit(args []string) []string {
	if s.Unit != "" {
		args = append(args, "--unit="+s.Unit)
	}
	return args
}

// appendProperties adds the resource limits as unit properties.
func (s *SystemdRun) appendProperties(args []string) []string {
	for _, property := range s.Limits.Properties() {
		args = append(args, "--property="+property)
	}
	return args
}
