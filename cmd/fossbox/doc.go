// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

// Fossbox runs a command in a disposable workspace with CPU, memory and
// runtime limits, copies selected output files out, and deletes the
// workspace.
//
// Usage:
//
//	fossbox [--config <file>] run [flags] [--] <command> [args...]
//	fossbox check
//	fossbox version
//
// Limits are enforced through a transient systemd user unit created by
// systemd-run. Without systemd-run the command still runs, unconstrained,
// and a warning is logged. The process exits with the command's own exit
// code.
//
// Defaults for every run flag can be set in a YAML or JSON file named by
// --config or the FOSSBOX_CONFIG environment variable.
package main
