// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox runs a command in a disposable, resource-bounded
// workspace and saves selected output files before removing it.
//
// The central type is [Runner]. A run acquires a uniquely named
// [Workspace] (under the system temp directory, or under the cache root
// when a RAM disk is requested), asks a [Prober] whether systemd-run is
// available, and builds a [Plan] with [Planner]. The plan's [Mode] is
// one of:
//
//   - [ModeDirect]: systemd-run is missing. The command runs in the
//     workspace with TMPDIR pointing at it and no limits are enforced.
//   - [ModeScoped]: the command runs in a transient user scope carrying
//     MemoryMax, CPUQuota and optionally RuntimeMaxSec.
//   - [ModeServiced]: a RAM disk was requested. The command runs as a
//     transient user service with a private size-capped tmpfs; systemd
//     sets its working directory and TMPDIR.
//
// [Executor] spawns the plan with stdio attached and returns the child's
// exit code. [Harvester] then copies files matching the save patterns
// ("**" allowed) into the destination, renaming on collision with the
// [RunID]. The workspace is removed on every exit path; a removal
// failure is logged and never changes the exit code.
//
// The package does no namespace or cgroup management of its own.
// Resource limits are whatever systemd enforces for the emitted unit
// properties.
package sandbox
