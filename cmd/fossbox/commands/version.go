// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/fossbox/fossbox/cmd/fossbox/cli"
	"github.com/fossbox/fossbox/lib/version"
)

func versionCommand(options Options) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Fprintf(options.stdout(), "fossbox %s\n", version.Full())
			return nil
		},
	}
}
