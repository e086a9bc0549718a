// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// fileTimes returns the access and modification times of path.
func fileTimes(path string, info fs.FileInfo) (time.Time, time.Time) {
	var stat unix.Stat_t
	if err := unix.Lstat(path, &stat); err != nil {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(stat.Atim.Unix()), info.ModTime()
}
