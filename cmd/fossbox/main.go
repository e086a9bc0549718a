// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"os"

	"github.com/fossbox/fossbox/cmd/fossbox/cli"
	"github.com/fossbox/fossbox/cmd/fossbox/commands"
	"github.com/fossbox/fossbox/lib/process"
)

func main() {
	if err := run(); err != nil {
		// A run that reached the child returns its exit code. The child
		// already wrote whatever it had to say.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		var usage *cli.UsageError
		if errors.As(err, &usage) {
			process.FatalCode(err, cli.ExitUsage)
		}
		process.Fatal(err)
	}
}

func run() error {
	configPath, args, err := commands.ParseGlobalFlags(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := commands.LoadConfig(configPath)
	if err != nil {
		return err
	}
	return commands.Root(commands.Options{Config: cfg}).Execute(args)
}
