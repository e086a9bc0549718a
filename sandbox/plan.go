// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"strings"
)

// Mode is the launch strategy for a run. Exactly one mode is chosen per
// run by SelectMode, and everything downstream switches on it.
type Mode int

const (
	// ModeDirect spawns the command without the isolation service. No
	// limits are enforced.
	ModeDirect Mode = iota

	// ModeScoped wraps the command in a transient systemd scope.
	ModeScoped

	// ModeServiced runs the command as a transient systemd service
	// with a private RAM-backed scratch mount.
	ModeServiced
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeScoped:
		return "scoped"
	case ModeServiced:
		return "serviced"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// SelectMode maps host capability and the RAM-disk request to a mode.
// Without the isolation service the RAM-disk request cannot be honored
// and the run falls back to ModeDirect.
func SelectMode(isolationAvailable, ramDiskRequested bool) Mode {
	switch {
	case !isolationAvailable:
		return ModeDirect
	case ramDiskRequested:
		return ModeServiced
	default:
		return ModeScoped
	}
}

// Plan is the concrete launch for one run.
type Plan struct {
	// Mode is the selected launch strategy.
	Mode Mode

	// Command is the full vector to spawn, launcher included.
	Command []string

	// Dir is the working directory for the spawn call. Empty in
	// ModeServiced, where systemd-run owns process placement.
	Dir string

	// Env is the KEY=VALUE overlay applied on top of the caller's
	// environment. Nil in ModeServiced.
	Env []string

	// Warnings are degraded-condition messages for the user.
	Warnings []string
}

// Planner assembles launch plans.
type Planner struct {
	// Launcher is the systemd-run executable. Empty means DefaultLauncher.
	Launcher string

	// ScratchVariable is the environment variable that points tools at
	// their temporary directory. Empty means "TMPDIR".
	ScratchVariable string

	// ScratchMount is the private tmpfs mount point inside a serviced
	// unit. Empty means "/tmp".
	ScratchMount string
}

// Plan builds the launch plan for command in workDir. The result
// depends only on its inputs.
func (p Planner) Plan(id RunID, command []string, limits Limits, workDir string, isolationAvailable bool) Plan {
	mode := SelectMode(isolationAvailable, limits.HasRAMDisk())
	scratchVariable := p.scratchVariable()
	overlay := []string{scratchVariable + "=" + workDir}

	switch mode {
	case ModeDirect:
		plan := Plan{
			Mode:    mode,
			Command: append([]string(nil), command...),
			Dir:     workDir,
			Env:     overlay,
			Warnings: []string{
				"systemd-run not found; running without hard CPU/RAM limits",
			},
		}
		if limits.Timeout > 0 {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("timeout of %ds will not be enforced without systemd-run", limits.Timeout))
		}
		if limits.HasRAMDisk() {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("RAM disk of %s ignored without systemd-run", limits.RAMDisk))
		}
		return plan

	case ModeScoped:
		run := NewSystemdRun(p.Launcher, id.UnitName(), limits)
		return Plan{
			Mode:    mode,
			Command: run.ScopeCommand(command),
			Dir:     workDir,
			Env:     overlay,
		}

	case ModeServiced:
		run := NewSystemdRun(p.Launcher, id.UnitName(), limits)
		return Plan{
			Mode:    mode,
			Command: run.ServiceCommand(command, workDir, scratchVariable, p.scratchMount()),
		}
	}

	panic(fmt.Sprintf("sandbox: unhandled launch mode %v", mode))
}

// Describe returns a one-line rendering of the plan's command vector
// for logs and dry runs.
func (p Plan) Describe() string {
	return strings.Join(p.Command, " ")
}

func (p Planner) scratchVariable() string {
	if p.ScratchVariable == "" {
		return "TMPDIR"
	}
	return p.ScratchVariable
}

func (p Planner) scratchMount() string {
	if p.ScratchMount == "" {
		return "/tmp"
	}
	return p.ScratchMount
}
