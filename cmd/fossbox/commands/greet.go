// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/fossbox/fossbox/cmd/fossbox/cli"
)

type greetParams struct {
	Name string `flag:"name" desc:"who to greet" default:"World"`
}

func helloCommand(options Options) *cli.Command {
	return greetCommand(options, "hello", "Say hello to someone", "Hello %s 👋 from fossbox!")
}

func goodbyeCommand(options Options) *cli.Command {
	return greetCommand(options, "goodbye", "Say goodbye to someone", "goodbye %s 👋 from fossbox!")
}

func greetCommand(options Options, name, summary, format string) *cli.Command {
	var params greetParams
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams(name, &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Usagef("%s takes no arguments, got %q (use --name)", name, args[0])
			}
			fmt.Fprintf(options.stdout(), format+"\n", params.Name)
			return nil
		},
	}
}
