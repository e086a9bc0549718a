// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// RequireReceive returns the next value from ch, failing the test if ch
// is closed or nothing arrives within timeout. what describes the wait
// and may be a format string for args.
//
//	base := testutil.RequireReceive(t, results, 5*time.Second, "waiting for workspace %d", i)
func RequireReceive[T any](t testing.TB, ch <-chan T, timeout time.Duration, what string, args ...any) T {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while %s", describe(what, args))
		}
		return value
	case <-timer.C:
		t.Fatalf("no value after %v while %s", timeout, describe(what, args))
	}

	var zero T
	return zero
}

func describe(what string, args []any) string {
	if what == "" {
		what = "receiving"
	}
	if len(args) == 0 {
		return what
	}
	return fmt.Sprintf(what, args...)
}
