// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Limits holds the user-facing resource options for a run.
type Limits struct {
	// CPUs is the number of cores the child may use. Fractions are
	// allowed (0.5 is half a core).
	CPUs float64

	// MemoryMax is the RAM cap in systemd size syntax ("512M", "1G").
	// Passed to the isolation service verbatim.
	MemoryMax string

	// Timeout is the wall-clock limit in seconds. Zero disables it.
	Timeout int

	// RAMDisk is the size of the memory-backed scratch mount. Empty
	// disables the RAM disk.
	RAMDisk string
}

// CPUQuota converts a core count into a systemd CPUQuota percentage.
// Fractional percentages truncate: 0.5 → "50%", 1.255 → "125%".
func CPUQuota(cpus float64) string {
	return fmt.Sprintf("%d%%", int(cpus*100))
}

// HasRAMDisk reports whether a RAM-backed scratch mount was requested.
func (l Limits) HasRAMDisk() bool {
	return l.RAMDisk != ""
}

// Properties returns the systemd unit properties that enforce the
// limits. MemoryMax and CPUQuota are always present; RuntimeMaxSec only
// when a timeout is set.
func (l Limits) Properties() []string {
	properties := []string{
		"MemoryMax=" + l.MemoryMax,
		"CPUQuota=" + CPUQuota(l.CPUs),
	}
	if l.Timeout > 0 {
		properties = append(properties, "RuntimeMaxSec="+strconv.Itoa(l.Timeout))
	}
	return properties
}

// ParseSize parses a systemd size string into bytes. systemd treats
// the K, M, G, T, P and E suffixes as powers of 1024. Returns 0 for
// empty, "infinity", and percentage values, none of which have a fixed
// byte count. The run path never calls this; malformed sizes reach
// systemd unchanged and fail there. The check command uses it to report
// problems before a run.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "infinity" || strings.HasSuffix(s, "%") {
		return 0, nil
	}

	last := s[len(s)-1]
	switch last {
	case 'K', 'M', 'G', 'T', 'P', 'E':
		s = s + "iB"
	case 'k':
		s = s[:len(s)-1] + "KiB"
	}

	value, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return value, nil
}
