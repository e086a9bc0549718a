// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/fossbox/fossbox/sandbox"
)

// EnvironmentVariable names the configuration file when --config is not
// given.
const EnvironmentVariable = "FOSSBOX_CONFIG"

// Config is the fossbox configuration.
type Config struct {
	// Defaults are the run options used when the matching flag is not
	// given on the command line.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Paths configures where workspaces are created.
	Paths PathsConfig `yaml:"paths"`

	// Isolation configures the systemd-run launch.
	Isolation IsolationConfig `yaml:"isolation"`

	// Harvest configures how saved files are written.
	Harvest HarvestConfig `yaml:"harvest"`

	// Logging configures status output.
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultsConfig holds run option defaults.
type DefaultsConfig struct {
	// CPUs is the CPU core limit. Default: 1.0
	CPUs float64 `yaml:"cpus"`

	// Memory is the memory ceiling in systemd size syntax. Default: 1G
	Memory string `yaml:"memory"`

	// Timeout is the maximum runtime in seconds; 0 disables it.
	Timeout int `yaml:"timeout"`

	// RAMDisk is the private tmpfs size; empty disables it.
	RAMDisk string `yaml:"ram_disk"`

	// Save lists glob patterns of files to keep after each run.
	Save []string `yaml:"save"`

	// Destination is where saved files are copied. Default: "."
	Destination string `yaml:"destination"`
}

// PathsConfig configures workspace locations.
type PathsConfig struct {
	// CacheRoot is the parent for RAM-disk workspaces. Empty means
	// ~/.cache/fossbox.
	CacheRoot string `yaml:"cache_root"`

	// TempRoot is the parent for ordinary workspaces. Empty means the
	// system temp directory.
	TempRoot string `yaml:"temp_root"`
}

// IsolationConfig configures the isolation service.
type IsolationConfig struct {
	// Launcher is the systemd-run executable. Default: systemd-run
	Launcher string `yaml:"launcher"`

	// ScratchVariable is the temp-dir variable handed to the child.
	// Default: TMPDIR
	ScratchVariable string `yaml:"scratch_variable"`

	// ScratchMount is the private tmpfs mount point. Default: /tmp
	ScratchMount string `yaml:"scratch_mount"`

	// KillGrace is how long an interrupted child has between SIGTERM
	// and SIGKILL. Default: 10s
	KillGrace time.Duration `yaml:"kill_grace"`
}

// HarvestConfig configures artifact saving.
type HarvestConfig struct {
	// Compression is none, zstd or lz4. Default: none
	Compression string `yaml:"compression"`
}

// LoggingConfig configures status messages.
type LoggingConfig struct {
	// Level is debug, info, warn or error. Default: info
	Level string `yaml:"level"`

	// Format is auto, text or json. Auto picks text on a terminal and
	// json otherwise. Default: auto
	Format string `yaml:"format"`
}

// Default returns the built-in configuration used when no file is
// given and as the base a file is merged into.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			CPUs:        1.0,
			Memory:      "1G",
			Timeout:     0,
			RAMDisk:     "",
			Destination: ".",
		},
		Isolation: IsolationConfig{
			Launcher:        "systemd-run",
			ScratchVariable: "TMPDIR",
			ScratchMount:    "/tmp",
			KillGrace:       10 * time.Second,
		},
		Harvest: HarvestConfig{
			Compression: "none",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads the file named by FOSSBOX_CONFIG, or returns Default when
// the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields absent
// from the file keep their defaults. Files ending in .json or .jsonc
// may carry comments and trailing commas; anything else is YAML.
// Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Plain JSON is valid YAML, so one decoder serves both.
		data = jsonc.ToJSON(data)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.CacheRoot = expandVars(c.Paths.CacheRoot, vars)
	c.Paths.TempRoot = expandVars(c.Paths.TempRoot, vars)
	c.Defaults.Destination = expandVars(c.Defaults.Destination, vars)
	c.Isolation.Launcher = expandVars(c.Isolation.Launcher, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Defaults.CPUs <= 0 {
		errs = append(errs, fmt.Errorf("defaults.cpus must be positive, got %g", c.Defaults.CPUs))
	}
	if c.Defaults.Memory == "" {
		errs = append(errs, fmt.Errorf("defaults.memory is required"))
	} else if _, err := sandbox.ParseSize(c.Defaults.Memory); err != nil {
		errs = append(errs, fmt.Errorf("defaults.memory: %w", err))
	}
	if c.Defaults.Timeout < 0 {
		errs = append(errs, fmt.Errorf("defaults.timeout must not be negative, got %d", c.Defaults.Timeout))
	}
	if c.Defaults.RAMDisk != "" {
		if _, err := sandbox.ParseSize(c.Defaults.RAMDisk); err != nil {
			errs = append(errs, fmt.Errorf("defaults.ram_disk: %w", err))
		}
	}

	if c.Isolation.Launcher == "" {
		errs = append(errs, fmt.Errorf("isolation.launcher is required"))
	}
	if c.Isolation.ScratchVariable == "" || strings.ContainsAny(c.Isolation.ScratchVariable, "= ") {
		errs = append(errs, fmt.Errorf("isolation.scratch_variable must be a variable name, got %q", c.Isolation.ScratchVariable))
	}
	if !filepath.IsAbs(c.Isolation.ScratchMount) {
		errs = append(errs, fmt.Errorf("isolation.scratch_mount must be an absolute path, got %q", c.Isolation.ScratchMount))
	}
	if c.Isolation.KillGrace < 0 {
		errs = append(errs, fmt.Errorf("isolation.kill_grace must not be negative, got %s", c.Isolation.KillGrace))
	}

	if _, err := sandbox.ParseCompression(c.Harvest.Compression); err != nil {
		errs = append(errs, fmt.Errorf("harvest.compression: %w", err))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	formatValues := []string{"auto", "text", "json"}
	if !slices.Contains(formatValues, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formatValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel parses Level. Empty means info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
