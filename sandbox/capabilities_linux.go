// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import "golang.org/x/sys/unix"

func isCgroupV2(mountpoint string) bool {
	var stat unix.Statfs_t
	if err := unix.Statfs(mountpoint, &stat); err != nil {
		return false
	}
	return stat.Type == unix.CGROUP2_SUPER_MAGIC
}
