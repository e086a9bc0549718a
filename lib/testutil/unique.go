// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use this instead of time.Now() when
// tests need file contents or names that must be distinguishable.
//
//	original := testutil.UniqueID("original")  // "original-1", ...
//	produced := testutil.UniqueID("produced")  // "produced-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
