// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is the directory tree owned by a single run. The child
// command runs in Dir; Base is the unique parent that Release removes.
type Workspace struct {
	// Base is the uniquely named directory created for this run.
	Base string

	// Dir is Base/work, the directory handed to the child.
	Dir string

	// RunID is the identity the workspace was created for.
	RunID RunID
}

// WorkspaceManager creates and removes per-run workspaces.
type WorkspaceManager struct {
	// TempRoot is the parent for ordinary workspaces. Empty means the
	// system default temporary directory.
	TempRoot string

	// CacheRoot is the parent for workspaces of runs that request a
	// RAM disk. In that mode the isolation service mounts a private
	// tmpfs over the system temp directory, so a workspace located
	// there would be hidden from the child and from the harvester.
	CacheRoot string

	// Logger for workspace operations.
	Logger *slog.Logger

	// remove deletes a workspace tree. Nil means os.RemoveAll.
	remove func(string) error
}

// DefaultCacheRoot returns ~/.cache/fossbox.
func DefaultCacheRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fossbox-cache")
	}
	return filepath.Join(homeDir, ".cache", "fossbox")
}

// Acquire creates a new workspace for the run. The base directory name
// embeds the run identity and a random suffix chosen by the kernel-level
// exclusive mkdir in os.MkdirTemp, so concurrent runs never share one.
func (m *WorkspaceManager) Acquire(id RunID, useRAMDisk bool) (*Workspace, error) {
	parent := m.TempRoot
	if parent == "" {
		parent = os.TempDir()
	}
	if useRAMDisk {
		parent = m.CacheRoot
		if parent == "" {
			parent = DefaultCacheRoot()
		}
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache root %s: %w", parent, err)
		}
	}

	base, err := os.MkdirTemp(parent, "fossbox-"+id.String()+"-")
	if err != nil {
		return nil, fmt.Errorf("creating workspace under %s: %w", parent, err)
	}

	dir := filepath.Join(base, "work")
	if err := os.Mkdir(dir, 0o755); err != nil {
		os.RemoveAll(base)
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	m.logger().Debug("workspace acquired", "base", base, "ram_disk", useRAMDisk)

	return &Workspace{Base: base, Dir: dir, RunID: id}, nil
}

// Release removes the workspace base directory and everything in it.
// The caller decides how to report a failure; a failed release must not
// change the run's exit code.
func (m *WorkspaceManager) Release(workspace *Workspace) error {
	if workspace == nil || workspace.Base == "" {
		return nil
	}
	remove := m.remove
	if remove == nil {
		remove = os.RemoveAll
	}
	if err := remove(workspace.Base); err != nil {
		return fmt.Errorf("removing workspace %s: %w", workspace.Base, err)
	}
	m.logger().Debug("workspace released", "base", workspace.Base)
	return nil
}

func (m *WorkspaceManager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
