// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// ValidationResult holds the result of a validation check.
type ValidationResult struct {
	Name    string
	Passed  bool
	Message string
	Warning bool // True if this is a warning, not an error.
}

// Validator performs pre-flight checks for a run configuration.
type Validator struct {
	results []ValidationResult
	errors  int
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		results: make([]ValidationResult, 0),
	}
}

// Results returns all validation results.
func (v *Validator) Results() []ValidationResult {
	return v.results
}

// HasErrors returns true if any validation failed.
func (v *Validator) HasErrors() bool {
	return v.errors > 0
}

// pass records a successful validation.
func (v *Validator) pass(name, message string) {
	v.results = append(v.results, ValidationResult{
		Name:    name,
		Passed:  true,
		Message: message,
	})
}

// warn records a warning (not a failure).
func (v *Validator) warn(name, message string) {
	v.results = append(v.results, ValidationResult{
		Name:    name,
		Passed:  true,
		Message: message,
		Warning: true,
	})
}

// fail records a validation failure.
func (v *Validator) fail(name, message string) {
	v.results = append(v.results, ValidationResult{
		Name:    name,
		Passed:  false,
		Message: message,
	})
	v.errors++
}

// ValidateCapabilities reports on the isolation service. A missing
// launcher is a warning: runs still work, only without limits.
func (v *Validator) ValidateCapabilities(caps *Capabilities) {
	if !caps.LauncherAvailable {
		v.warn("systemd", caps.SkipReason()+" (runs will use direct mode without limits)")
	} else if caps.LauncherVersion != "" {
		v.pass("systemd", fmt.Sprintf("available: %s (%s)", caps.LauncherPath, caps.LauncherVersion))
	} else {
		v.pass("systemd", fmt.Sprintf("available: %s", caps.LauncherPath))
	}

	if caps.LauncherAvailable {
		if caps.CanEnforceLimits() {
			v.pass("user-scope", "transient user scopes can be created")
		} else {
			v.warn("user-scope", caps.SkipReason())
		}
	}

	if caps.CgroupV2 {
		v.pass("cgroup", "cgroup v2 mounted at /sys/fs/cgroup")
	} else {
		v.warn("cgroup", "cgroup v2 not detected (MemoryMax and CPUQuota may be ignored)")
	}
}

// ValidateDirectory checks that dir exists (or can be created) and is
// writable, by creating and removing a probe file.
func (v *Validator) ValidateDirectory(name, dir string) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.fail(name, fmt.Sprintf("cannot create %s: %v", dir, err))
		return
	}

	probe, err := os.CreateTemp(dir, ".fossbox-check-*")
	if err != nil {
		v.fail(name, fmt.Sprintf("not writable: %s (%v)", dir, err))
		return
	}
	probe.Close()
	os.Remove(probe.Name())

	absolute, err := filepath.Abs(dir)
	if err != nil {
		absolute = dir
	}
	v.pass(name, fmt.Sprintf("writable: %s", absolute))
}

// ValidateLimits checks that the configured sizes parse and the CPU
// count is positive.
func (v *Validator) ValidateLimits(limits Limits) {
	if limits.CPUs <= 0 {
		v.fail("cpus", fmt.Sprintf("must be positive, got %g", limits.CPUs))
	} else {
		v.pass("cpus", fmt.Sprintf("%g (CPUQuota=%s)", limits.CPUs, CPUQuota(limits.CPUs)))
	}

	v.validateSize("memory", limits.MemoryMax, false)
	v.validateSize("ram-disk", limits.RAMDisk, true)

	if limits.Timeout < 0 {
		v.fail("timeout", fmt.Sprintf("must not be negative, got %d", limits.Timeout))
	}
}

func (v *Validator) validateSize(name, value string, optional bool) {
	if value == "" {
		if optional {
			v.pass(name, "disabled")
		} else {
			v.fail(name, "not set")
		}
		return
	}
	bytes, err := ParseSize(value)
	if err != nil {
		v.fail(name, err.Error())
		return
	}
	if bytes == 0 {
		v.pass(name, value)
		return
	}
	v.pass(name, fmt.Sprintf("%s (%s)", value, humanize.IBytes(bytes)))
}

// PrintResults writes validation results to a writer. Markers are
// coloured when w is a terminal.
func (v *Validator) PrintResults(w io.Writer) {
	output := termenv.NewOutput(w)

	for _, r := range v.results {
		var prefix termenv.Style
		switch {
		case r.Passed && r.Warning:
			prefix = output.String("⚠").Foreground(output.Color("3"))
		case r.Passed:
			prefix = output.String("✓").Foreground(output.Color("2"))
		default:
			prefix = output.String("✗").Foreground(output.Color("1"))
		}
		fmt.Fprintf(w, "%s %s: %s\n", prefix, r.Name, r.Message)
	}

	fmt.Fprintln(w)
	if v.HasErrors() {
		fmt.Fprintf(w, "Validation failed with %d error(s)\n", v.errors)
	} else {
		fmt.Fprintln(w, "Ready to run")
	}
}
