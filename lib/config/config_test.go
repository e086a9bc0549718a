// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Defaults.CPUs != 1.0 {
		t.Errorf("expected cpus=1.0, got %g", cfg.Defaults.CPUs)
	}
	if cfg.Defaults.Memory != "1G" {
		t.Errorf("expected memory=1G, got %s", cfg.Defaults.Memory)
	}
	if cfg.Defaults.Timeout != 0 || cfg.Defaults.RAMDisk != "" || len(cfg.Defaults.Save) != 0 {
		t.Errorf("expected timeout, ram_disk and save disabled, got %+v", cfg.Defaults)
	}
	if cfg.Defaults.Destination != "." {
		t.Errorf("expected destination=., got %s", cfg.Defaults.Destination)
	}
	if cfg.Isolation.KillGrace != 10*time.Second {
		t.Errorf("expected kill_grace=10s, got %s", cfg.Isolation.KillGrace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_WithoutFossboxConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_WithFossboxConfig(t *testing.T) {
	path := writeConfig(t, "fossbox.yaml", `
defaults:
  cpus: 2
  memory: 4G
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Defaults.CPUs != 2 || cfg.Defaults.Memory != "4G" {
		t.Errorf("file values not applied: %+v", cfg.Defaults)
	}
	// Unset fields keep their defaults.
	if cfg.Defaults.Destination != "." {
		t.Errorf("expected destination=., got %s", cfg.Defaults.Destination)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(EnvironmentVariable, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "fossbox.yaml", `
defaults:
  cpus: 0.5
  memory: 512M
  timeout: 300
  ram_disk: 256M
  save: ["*.xml", "**/*.gnmap"]
  destination: /srv/scans

paths:
  cache_root: /var/cache/fossbox
  temp_root: /scratch

isolation:
  launcher: /usr/bin/systemd-run
  scratch_variable: TMP
  scratch_mount: /scratch
  kill_grace: 3s

harvest:
  compression: zstd

logging:
  level: debug
  format: json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := &Config{
		Defaults: DefaultsConfig{
			CPUs:        0.5,
			Memory:      "512M",
			Timeout:     300,
			RAMDisk:     "256M",
			Save:        []string{"*.xml", "**/*.gnmap"},
			Destination: "/srv/scans",
		},
		Paths: PathsConfig{CacheRoot: "/var/cache/fossbox", TempRoot: "/scratch"},
		Isolation: IsolationConfig{
			Launcher:        "/usr/bin/systemd-run",
			ScratchVariable: "TMP",
			ScratchMount:    "/scratch",
			KillGrace:       3 * time.Second,
		},
		Harvest: HarvestConfig{Compression: "zstd"},
		Logging: LoggingConfig{Level: "debug", Format: "json"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("LoadFile =\n  %+v\nwant\n  %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "fossbox.jsonc", `{
	// Scans need more memory than the default.
	"defaults": {
		"memory": "8G",
		"save": ["*.xml",],
	},
	/* zstd keeps nmap XML small */
	"harvest": {"compression": "zstd"},
}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Defaults.Memory != "8G" {
		t.Errorf("expected memory=8G, got %s", cfg.Defaults.Memory)
	}
	if !reflect.DeepEqual(cfg.Defaults.Save, []string{"*.xml"}) {
		t.Errorf("expected save=[*.xml], got %v", cfg.Defaults.Save)
	}
	if cfg.Harvest.Compression != "zstd" {
		t.Errorf("expected compression=zstd, got %s", cfg.Harvest.Compression)
	}
	if cfg.Defaults.CPUs != 1.0 {
		t.Errorf("expected default cpus to survive, got %g", cfg.Defaults.CPUs)
	}
}

func TestLoadFile_EmptyFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "fossbox.yaml", ""))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults for an empty file, got %+v", cfg)
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeConfig(t, "fossbox.yaml", `
defaults:
  cpu: 2
`)
	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if !strings.Contains(err.Error(), "cpu") {
		t.Errorf("error does not name the key: %v", err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("FOSSBOX_TEST_ROOT", "/from/env")
	vars := map[string]string{"HOME": "/home/test"}

	tests := []struct {
		input, want string
	}{
		{"${HOME}/.cache/fossbox", "/home/test/.cache/fossbox"},
		{"${FOSSBOX_TEST_ROOT}/tmp", "/from/env/tmp"},
		{"${FOSSBOX_TEST_UNSET:-/fallback}/x", "/fallback/x"},
		{"${FOSSBOX_TEST_UNSET}", ""},
		{"/plain/path", "/plain/path"},
	}
	for _, tt := range tests {
		if got := expandVars(tt.input, vars); got != tt.want {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadFile_ExpandsPaths(t *testing.T) {
	t.Setenv("HOME", "/home/scanner")
	path := writeConfig(t, "fossbox.yaml", `
paths:
  cache_root: ${HOME}/.cache/fossbox
defaults:
  destination: ${FOSSBOX_TEST_DEST:-/srv/results}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Paths.CacheRoot != "/home/scanner/.cache/fossbox" {
		t.Errorf("cache_root = %s", cfg.Paths.CacheRoot)
	}
	if cfg.Defaults.Destination != "/srv/results" {
		t.Errorf("destination = %s", cfg.Defaults.Destination)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Defaults.CPUs = 0
	cfg.Defaults.Memory = "lots"
	cfg.Defaults.Timeout = -5
	cfg.Defaults.RAMDisk = "big"
	cfg.Isolation.Launcher = ""
	cfg.Isolation.ScratchVariable = "A=B"
	cfg.Isolation.ScratchMount = "relative"
	cfg.Isolation.KillGrace = -time.Second
	cfg.Harvest.Compression = "gzip"
	cfg.Logging.Level = "chatty"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, key := range []string{
		"defaults.cpus", "defaults.memory", "defaults.timeout", "defaults.ram_disk",
		"isolation.launcher", "isolation.scratch_variable", "isolation.scratch_mount",
		"isolation.kill_grace", "harvest.compression", "logging.level", "logging.format",
	} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("validation error does not mention %s:\n%v", key, err)
		}
	}
}

func TestValidate_SizeForms(t *testing.T) {
	for _, memory := range []string{"1G", "512M", "1073741824", "infinity", "50%"} {
		cfg := Default()
		cfg.Defaults.Memory = memory
		if err := cfg.Validate(); err != nil {
			t.Errorf("memory %q rejected: %v", memory, err)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := LoggingConfig{Level: tt.level}.SlogLevel()
		if err != nil {
			t.Errorf("SlogLevel(%q) error: %v", tt.level, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestValidate_LogFormats(t *testing.T) {
	for _, format := range []string{"auto", "text", "json"} {
		cfg := Default()
		cfg.Logging.Format = format
		if err := cfg.Validate(); err != nil {
			t.Errorf("format %q rejected: %v", format, err)
		}
	}

	cfg := Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("format yaml: err = %v, want logging.format error", err)
	}
}
