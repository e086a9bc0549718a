// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLauncherProbe(t *testing.T) {
	bin := t.TempDir()
	launcher := filepath.Join(bin, "fake-systemd-run")
	if err := os.WriteFile(launcher, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)

	if !(LauncherProbe{Launcher: "fake-systemd-run"}).IsolationAvailable() {
		t.Error("launcher on PATH not detected")
	}
	if (LauncherProbe{Launcher: "fossbox-missing-launcher"}).IsolationAvailable() {
		t.Error("missing launcher reported available")
	}
	if (LauncherProbe{}).IsolationAvailable() {
		t.Error("systemd-run reported available with PATH limited to an empty bin")
	}
}

func TestStaticProbe(t *testing.T) {
	if !StaticProbe(true).IsolationAvailable() || StaticProbe(false).IsolationAvailable() {
		t.Error("StaticProbe does not return its fixed answer")
	}
}

func TestCapabilitiesSkipReason(t *testing.T) {
	tests := []struct {
		caps   Capabilities
		can    bool
		reason string
	}{
		{Capabilities{}, false, "not installed"},
		{Capabilities{LauncherAvailable: true}, false, "cannot create user scopes"},
		{Capabilities{LauncherAvailable: true, UserScopesWork: true}, true, ""},
	}
	for _, tt := range tests {
		if got := tt.caps.CanEnforceLimits(); got != tt.can {
			t.Errorf("%+v CanEnforceLimits() = %v, want %v", tt.caps, got, tt.can)
		}
		reason := tt.caps.SkipReason()
		if tt.reason == "" && reason != "" || !strings.Contains(reason, tt.reason) {
			t.Errorf("%+v SkipReason() = %q, want containing %q", tt.caps, reason, tt.reason)
		}
	}
}

func TestValidatorMissingLauncherIsWarning(t *testing.T) {
	v := NewValidator()
	v.ValidateCapabilities(&Capabilities{})

	if v.HasErrors() {
		t.Error("missing launcher must not fail validation")
	}
	var warnings int
	for _, result := range v.Results() {
		if result.Warning {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("expected launcher and cgroup warnings, got %+v", v.Results())
	}
}

func TestValidatorLimits(t *testing.T) {
	good := NewValidator()
	good.ValidateLimits(Limits{CPUs: 1.5, MemoryMax: "1G", RAMDisk: "256M", Timeout: 60})
	if good.HasErrors() {
		t.Errorf("valid limits rejected: %+v", good.Results())
	}

	bad := NewValidator()
	bad.ValidateLimits(Limits{CPUs: 0, MemoryMax: "", RAMDisk: "huge", Timeout: -1})
	failed := make(map[string]bool)
	for _, result := range bad.Results() {
		if !result.Passed {
			failed[result.Name] = true
		}
	}
	for _, name := range []string{"cpus", "memory", "ram-disk", "timeout"} {
		if !failed[name] {
			t.Errorf("expected %s to fail, results: %+v", name, bad.Results())
		}
	}
}

func TestValidatorDirectory(t *testing.T) {
	v := NewValidator()
	dir := filepath.Join(t.TempDir(), "created")
	v.ValidateDirectory("cache", dir)
	if v.HasErrors() {
		t.Fatalf("writable directory rejected: %+v", v.Results())
	}
	if entries, err := os.ReadDir(dir); err != nil || len(entries) != 0 {
		t.Errorf("probe file left behind: %v %v", entries, err)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	v.ValidateDirectory("dest", filepath.Join(blocker, "sub"))
	if !v.HasErrors() {
		t.Error("directory under a regular file accepted")
	}
}

func TestValidatorPrintResults(t *testing.T) {
	v := NewValidator()
	v.ValidateLimits(Limits{CPUs: 2, MemoryMax: "512M"})

	var buf bytes.Buffer
	v.PrintResults(&buf)
	output := buf.String()

	for _, want := range []string{"cpus: 2 (CPUQuota=200%)", "memory: 512M (512 MiB)", "ram-disk: disabled", "Ready to run"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	v.ValidateLimits(Limits{})
	buf.Reset()
	v.PrintResults(&buf)
	if !strings.Contains(buf.String(), "Validation failed with 2 error(s)") {
		t.Errorf("failure summary missing:\n%s", buf.String())
	}
}

func TestValidatorUserScopeWarningUsesSkipReason(t *testing.T) {
	caps := &Capabilities{LauncherAvailable: true, LauncherPath: "/usr/bin/systemd-run", CgroupV2: true}
	v := NewValidator()
	v.ValidateCapabilities(caps)

	for _, result := range v.Results() {
		if result.Name != "user-scope" {
			continue
		}
		if !result.Warning || result.Message != caps.SkipReason() {
			t.Errorf("user-scope result = %+v, want warning %q", result, caps.SkipReason())
		}
		return
	}
	t.Errorf("no user-scope result: %+v", v.Results())
}
