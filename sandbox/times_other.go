// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package sandbox

import (
	"io/fs"
	"time"
)

// fileTimes returns the modification time for both values; access
// times are only read on Linux.
func fileTimes(_ string, info fs.FileInfo) (time.Time, time.Time) {
	return info.ModTime(), info.ModTime()
}
