// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

// maxNameAttempts bounds the search for a free destination name.
const maxNameAttempts = 100

// Harvester copies selected files out of a workspace.
type Harvester struct {
	// RunID disambiguates saved files whose names collide with files
	// already in the destination.
	RunID RunID

	// Compression applied to saved files.
	Compression Compression

	// Logger for harvest events.
	Logger *slog.Logger
}

// ParsePatterns splits a comma-separated glob list, dropping blanks.
func ParsePatterns(list string) []string {
	var patterns []string
	for _, pattern := range strings.Split(list, ",") {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}

// Harvest expands each pattern relative to workDir and copies matching
// regular files into destination, which is created if missing. "**"
// matches any number of directories. Symlinks, directories and special
// files are skipped, as is anything resolving outside workDir. A file
// matched by several patterns is copied once.
//
// Failures on individual files are logged and not counted; the returned
// error is non-nil only if the destination cannot be created.
func (h *Harvester) Harvest(workDir string, patterns []string, destination string) (int, error) {
	if len(patterns) == 0 {
		return 0, nil
	}
	logger := h.logger()

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return 0, fmt.Errorf("creating destination %s: %w", destination, err)
	}

	resolvedRoot, err := filepath.EvalSymlinks(workDir)
	if err != nil {
		return 0, fmt.Errorf("resolving workspace %s: %w", workDir, err)
	}

	root := os.DirFS(workDir)
	seen := make(map[string]bool)
	copied := 0

	for _, raw := range patterns {
		pattern, ok := normalizePattern(raw)
		if !ok {
			logger.Warn("skipping save pattern outside the workspace", "pattern", raw)
			continue
		}

		matches, err := doublestar.Glob(root, pattern)
		if err != nil {
			logger.Warn("invalid save pattern", "pattern", raw, "error", err)
			continue
		}
		if len(matches) == 0 {
			logger.Warn("save pattern matched nothing", "pattern", raw)
			continue
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true

			source := filepath.Join(workDir, filepath.FromSlash(match))
			info, err := os.Lstat(source)
			if err != nil {
				logger.Warn("cannot stat artifact", "path", match, "error", err)
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if !withinRoot(resolvedRoot, source) {
				logger.Warn("skipping artifact reached through a symlink out of the workspace", "path", match)
				continue
			}

			if err := h.copyFile(source, match, info, destination); err != nil {
				logger.Warn("failed to save artifact", "path", match, "error", err)
				continue
			}
			copied++
		}
	}

	return copied, nil
}

// copyFile writes one artifact into destination, preserving permission
// bits and access/modification times.
func (h *Harvester) copyFile(source, relative string, info fs.FileInfo, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	perm := info.Mode().Perm()
	out, target, err := createUnique(destination, info.Name(), h.Compression.Extension(), h.RunID, perm)
	if err != nil {
		return err
	}

	hasher := blake3.New()
	written, err := h.writeArtifact(out, in, hasher)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(target)
		return err
	}

	logger := h.logger()

	// The create mode was filtered by the umask. The content is already
	// saved, so metadata failures only warn.
	if err := os.Chmod(target, perm); err != nil {
		logger.Warn("cannot preserve artifact mode", "dest", target, "error", err)
	}
	accessTime, modifyTime := fileTimes(source, info)
	if err := os.Chtimes(target, accessTime, modifyTime); err != nil {
		logger.Warn("cannot preserve artifact times", "dest", target, "error", err)
	}

	logger.Info("saved artifact",
		"path", relative,
		"dest", target,
		"size", humanize.IBytes(uint64(written)),
		"blake3", hex.EncodeToString(hasher.Sum(nil)),
	)
	return nil
}

// writeArtifact streams in through the configured compression into out
// and returns the number of uncompressed bytes. The digest covers the
// uncompressed content.
func (h *Harvester) writeArtifact(out io.Writer, in io.Reader, hasher io.Writer) (int64, error) {
	writer, err := h.Compression.wrap(out)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(io.MultiWriter(writer, hasher), in)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	return written, err
}

// createUnique exclusively creates name+suffix in dir. When that is
// taken it tries stem-<runid>.ext+suffix, then stem-<runid>-2.ext+suffix
// and so on. suffix is the compression extension, kept outside the
// source name's extension.
func createUnique(dir, name, suffix string, id RunID, perm fs.FileMode) (*os.File, string, error) {
	stem, extension := splitName(name)

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := name
		switch {
		case attempt == 1:
			candidate = stem + "-" + id.String() + extension
		case attempt > 1:
			candidate = stem + "-" + id.String() + "-" + strconv.Itoa(attempt) + extension
		}
		candidate += suffix

		target := filepath.Join(dir, candidate)
		file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s after %d attempts", name+suffix, dir, maxNameAttempts)
}

// splitName splits at the last dot. A leading dot does not start an
// extension, so ".env" has stem ".env".
func splitName(name string) (string, string) {
	extension := filepath.Ext(name)
	stem := strings.TrimSuffix(name, extension)
	if stem == "" {
		return name, ""
	}
	return stem, extension
}

// normalizePattern converts a user pattern to the slash-separated,
// relative form io/fs expects. Absolute and parent-escaping patterns
// are rejected.
func normalizePattern(pattern string) (string, bool) {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	for strings.HasPrefix(pattern, "./") {
		pattern = pattern[2:]
	}
	if pattern == "" || path.IsAbs(pattern) {
		return "", false
	}
	if pattern == ".." || strings.HasPrefix(pattern, "../") {
		return "", false
	}
	return pattern, true
}

// withinRoot reports whether target, with symlinks resolved, stays inside
// resolvedRoot.
func withinRoot(resolvedRoot, target string) bool {
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	return strings.HasPrefix(resolved, resolvedRoot+string(filepath.Separator))
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
