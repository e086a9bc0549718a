// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCommandLogger_SplitsByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewCommandLogger(&stdout, &stderr, slog.LevelInfo, LogFormatText).With("run", "1a2b3c4d")

	logger.Debug("hidden")
	logger.Info("workspace ready", "path", "/tmp/x")
	logger.Warn("systemd-run not found")
	logger.Error("command could not be started")

	if out := stdout.String(); !strings.Contains(out, "workspace ready") || strings.Contains(out, "systemd-run") {
		t.Errorf("stdout = %q", out)
	}
	if strings.Contains(stdout.String(), "hidden") {
		t.Error("debug record emitted at info level")
	}
	errOut := stderr.String()
	if !strings.Contains(errOut, "systemd-run not found") || !strings.Contains(errOut, "command could not be started") {
		t.Errorf("stderr = %q", errOut)
	}
	if strings.Contains(errOut, "workspace ready") {
		t.Error("info record sent to stderr")
	}
	for _, out := range []string{stdout.String(), errOut} {
		if !strings.Contains(out, "run=1a2b3c4d") {
			t.Errorf("With attributes missing from %q", out)
		}
	}
}

func TestNewCommandLogger_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewCommandLogger(&stdout, &stderr, slog.LevelDebug, LogFormatJSON)

	logger.WithGroup("harvest").Debug("saved artifact", "size", "1.2 KiB")

	var record map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &record); err != nil {
		t.Fatalf("stdout is not JSON: %v (%q)", err, stdout.String())
	}
	if record["msg"] != "saved artifact" {
		t.Errorf("msg = %v", record["msg"])
	}
	group, ok := record["harvest"].(map[string]any)
	if !ok || group["size"] != "1.2 KiB" {
		t.Errorf("grouped attribute missing: %v", record)
	}
}

func TestNewCommandLogger_AutoUsesJSONWhenNotTerminal(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewCommandLogger(&stdout, &stderr, slog.LevelInfo, LogFormatAuto)
	logger.Warn("careful")

	if !json.Valid(bytes.TrimSpace(stderr.Bytes())) {
		t.Errorf("auto format with a buffer should be JSON, got %q", stderr.String())
	}
}

func TestNewCommandLogger_QuietLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewCommandLogger(&stdout, &stderr, slog.LevelWarn, LogFormatText)
	logger.Info("progress")
	logger.Warn("problem")

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing at warn level", stdout.String())
	}
	if !strings.Contains(stderr.String(), "problem") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
