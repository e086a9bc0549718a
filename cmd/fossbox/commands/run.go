// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/fossbox/fossbox/cmd/fossbox/cli"
	"github.com/fossbox/fossbox/lib/config"
	"github.com/fossbox/fossbox/sandbox"
)

type runParams struct {
	CPUs     float64  `flag:"cpus" desc:"CPU cores the command may use (CPUQuota = cpus x 100%)"`
	Memory   string   `flag:"memory" desc:"memory ceiling in systemd size syntax (512M, 2G, infinity)"`
	Timeout  int      `flag:"timeout" desc:"maximum runtime in seconds, 0 for none"`
	RAMDisk  string   `flag:"ram-disk" desc:"size of a private tmpfs for temp files (e.g. 256M), empty for none"`
	Save     []string `flag:"save" desc:"comma-separated globs of workspace files to keep, ** crosses directories (repeatable)"`
	Dest     string   `flag:"dest" desc:"directory saved files are copied into"`
	Compress string   `flag:"compress" desc:"compress saved files: none, zstd or lz4"`
	DryRun   bool     `flag:"dry-run" desc:"print the launch plan instead of running the command"`
	Quiet    bool     `flag:"quiet,q" desc:"log only warnings and errors"`
}

func runCommand(options Options) *cli.Command {
	var params runParams
	cfg := options.Config

	return &cli.Command{
		Name:    "run",
		Summary: "Run a command in a fresh, limited workspace",
		Description: `Run a command in a fresh workspace directory with CPU, memory and
runtime limits, then copy the files matching --save into --dest and
delete the workspace.

The command runs with the workspace as its working directory and
TMPDIR pointing into it. With --ram-disk it instead gets a private
tmpfs of that size as /tmp. Limits need systemd-run and a user
session; without them the command runs unconstrained and a warning
is logged.

fossbox exits with the command's exit code (128+N when it was killed
by signal N, 127 when it could not be started).`,
		Usage: "fossbox run [flags] [--] <command> [args...]",
		Flags: func() *pflag.FlagSet {
			flagSet := cli.FlagsFromParams("run", &params)
			if err := applyRunDefaults(flagSet, cfg); err != nil {
				panic(fmt.Sprintf("run flag defaults: %v", err))
			}
			// Everything from the command name on belongs to the command.
			flagSet.SetInterspersed(false)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Service scan limited to one core and 1G, keeping the XML",
				Command:     "fossbox run --save '*.xml' -- nmap -sV -oX scan.xml 10.0.0.1",
			},
			{
				Description: "Give a temp-heavy tool a 512M RAM disk and five minutes",
				Command:     "fossbox run --ram-disk 512M --timeout 300 --save 'out/**/*.json' -- ./crawl.sh",
			},
			{
				Description: "Show the systemd-run invocation without running anything",
				Command:     "fossbox run --dry-run --cpus 2 -- make test",
			},
		},
		Run: func(args []string) error {
			return runRun(options, params, args)
		},
	}
}

// applyRunDefaults makes the configuration file's values the flag
// defaults, so --help shows what a run will actually use.
func applyRunDefaults(flagSet *pflag.FlagSet, cfg *config.Config) error {
	defaults := []struct {
		name  string
		value any
	}{
		{"cpus", cfg.Defaults.CPUs},
		{"memory", cfg.Defaults.Memory},
		{"timeout", cfg.Defaults.Timeout},
		{"ram-disk", cfg.Defaults.RAMDisk},
		{"dest", cfg.Defaults.Destination},
		{"compress", cfg.Harvest.Compression},
	}
	for _, d := range defaults {
		if err := cli.SetDefault(flagSet, d.name, d.value); err != nil {
			return err
		}
	}
	if len(cfg.Defaults.Save) > 0 {
		if err := cli.SetDefault(flagSet, "save", cfg.Defaults.Save); err != nil {
			return err
		}
	}
	return nil
}

func runRun(options Options, params runParams, args []string) error {
	if len(args) == 0 {
		return cli.Usagef("no command given\n\nRun 'fossbox run --help' for usage.")
	}
	if params.CPUs <= 0 {
		return cli.Usagef("--cpus must be positive, got %g", params.CPUs)
	}
	if params.Timeout < 0 {
		return cli.Usagef("--timeout must not be negative, got %d", params.Timeout)
	}
	compression, err := sandbox.ParseCompression(params.Compress)
	if err != nil {
		return cli.Usagef("--compress: %v", err)
	}

	cfg := options.Config
	logger, err := newLogger(options, cfg.Logging, params.Quiet)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	runner := sandbox.New(sandbox.Config{
		TempRoot:        cfg.Paths.TempRoot,
		CacheRoot:       cfg.Paths.CacheRoot,
		Launcher:        cfg.Isolation.Launcher,
		ScratchVariable: cfg.Isolation.ScratchVariable,
		ScratchMount:    cfg.Isolation.ScratchMount,
		Prober:          options.Prober,
		Compression:     compression,
		KillGrace:       cfg.Isolation.KillGrace,
		Stdin:           options.stdin(),
		Stdout:          options.stdout(),
		Stderr:          options.stderr(),
		Logger:          logger.With("command", "run"),
	})

	code, err := runner.Run(ctx, sandbox.RunOptions{
		Command: args,
		Limits: sandbox.Limits{
			CPUs:      params.CPUs,
			MemoryMax: params.Memory,
			Timeout:   params.Timeout,
			RAMDisk:   params.RAMDisk,
		},
		Save:        sandbox.ParsePatterns(strings.Join(params.Save, ",")),
		Destination: params.Dest,
		DryRun:      params.DryRun,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// newLogger builds the status logger from the logging section.
// FOSSBOX_DEBUG lowers the level to debug; quiet raises it to warn.
func newLogger(options Options, logging config.LoggingConfig, quiet bool) (*slog.Logger, error) {
	level, err := logging.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	if os.Getenv("FOSSBOX_DEBUG") != "" {
		level = slog.LevelDebug
	}
	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return cli.NewCommandLogger(options.stdout(), options.stderr(), level, cli.LogFormat(logging.Format)), nil
}
