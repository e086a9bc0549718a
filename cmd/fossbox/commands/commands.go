// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the fossbox command tree.
package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/fossbox/fossbox/cmd/fossbox/cli"
	"github.com/fossbox/fossbox/lib/config"
	"github.com/fossbox/fossbox/sandbox"
)

// Options carries what every command needs from the process.
type Options struct {
	// Config is the loaded and validated configuration.
	Config *config.Config

	// Stdin, Stdout and Stderr are the process streams. Nil means the
	// os equivalents.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prober overrides systemd-run detection for the run command. Nil
	// means a PATH lookup of the configured launcher.
	Prober sandbox.Prober
}

func (o Options) stdin() io.Reader {
	if o.Stdin == nil {
		return os.Stdin
	}
	return o.Stdin
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

// Root builds and returns the complete fossbox command tree.
func Root(options Options) *cli.Command {
	if options.Config == nil {
		options.Config = config.Default()
	}

	return &cli.Command{
		Name: "fossbox",
		Description: `fossbox: run a command in a disposable, resource-bounded workspace.

Each run gets a fresh working directory that is removed afterwards.
CPU, memory and runtime limits are enforced through a transient
systemd user unit when systemd-run is available. Selected output
files are copied out before the workspace is deleted.`,
		Usage:      "fossbox [--config <file>] <command> [flags]",
		HelpOutput: options.stderr(),
		Subcommands: []*cli.Command{
			runCommand(options),
			checkCommand(options),
			versionCommand(options),
			helloCommand(options),
			goodbyeCommand(options),
		},
		Examples: []cli.Example{
			{
				Description: "Scan with two cores and 2G of memory, keeping the reports",
				Command:     "fossbox run --cpus 2 --memory 2G --save '*.xml,*.gnmap' -- nmap -oA scan 10.0.0.0/24",
			},
			{
				Description: "See which limits this host can enforce",
				Command:     "fossbox check",
			},
		},
	}
}

// ParseGlobalFlags consumes the flags that precede the command name and
// returns the configuration file path and the remaining arguments.
func ParseGlobalFlags(args []string) (string, []string, error) {
	var configPath string

	flagSet := pflag.NewFlagSet("fossbox", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "configuration file (default $"+config.EnvironmentVariable+")")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return configPath, []string{"--help"}, nil
		}
		return "", nil, cli.Usagef("%s\n\nRun 'fossbox --help' for usage.", err)
	}
	return configPath, flagSet.Args(), nil
}

// LoadConfig loads path, or the file named by FOSSBOX_CONFIG when path
// is empty, and validates the result.
func LoadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
