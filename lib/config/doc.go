// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional fossbox configuration file.
//
// The file is named by the --config flag (via [LoadFile]) or the
// FOSSBOX_CONFIG environment variable (via [Load]). There is no search
// path: without either, [Default] applies. Values from the file are
// merged over the defaults and become the defaults of the matching
// command-line flags, so an explicit flag always wins.
//
// YAML is the native format. Files ending in .json or .jsonc are
// accepted too, with comments and trailing commas stripped before
// decoding. Unknown keys are an error.
//
// Path fields (paths.cache_root, paths.temp_root, defaults.destination,
// isolation.launcher) expand ${HOME} and ${VAR:-default} after loading.
//
// Key exports:
//
//   - [Config] -- master struct with Defaults, Paths, Isolation,
//     Harvest and Logging sections
//   - [Default] -- the built-in configuration
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every problem at once
package config
