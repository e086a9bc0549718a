// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for fossbox.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in
// cmd/fossbox/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]; [SetDefault] layers configuration file values over
// the tag defaults. [NewCommandLogger] builds the slog logger that sends
// progress to stdout and warnings to stderr.
//
// Errors returned from Execute carry their exit status: [UsageError]
// for command-line mistakes (exit 2) and [ExitError] for commands that
// already reported their outcome.
package cli
