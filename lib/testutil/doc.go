// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for fossbox packages.
//
// [WriteFile] and [ReadFile] create and read fixture files, creating
// parent directories as needed. They replace the os.MkdirAll /
// os.WriteFile / t.Fatalf triple that every harvest and run test would
// otherwise repeat.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (a select against a timer) so that tests collecting results
// from goroutines do not hang forever when something goes wrong.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, e.g. distinct file contents that let a test tell
// which copy of a file ended up where.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no fossbox-internal dependencies.
package testutil
