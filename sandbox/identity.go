// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"strings"

	"github.com/google/uuid"
)

// RunID is the short token that names one invocation. It namespaces the
// workspace directory, the systemd unit, and renamed output files.
type RunID string

// runIDLength is the number of hex characters kept from the UUID.
const runIDLength = 8

// NewRunID returns a fresh run identity drawn from a random (v4) UUID.
// The token is random rather than time-derived, so two runs started in
// the same instant still receive different identities.
func NewRunID() RunID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return RunID(hex[:runIDLength])
}

func (id RunID) String() string {
	return string(id)
}

// UnitName returns the transient systemd unit name for this run.
func (id RunID) UnitName() string {
	return "fossbox-" + string(id)
}
