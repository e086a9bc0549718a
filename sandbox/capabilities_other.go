// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package sandbox

func isCgroupV2(string) bool {
	return false
}
