// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogFormat selects the status message encoding.
type LogFormat string

const (
	// LogFormatAuto uses text when stderr is a terminal and JSON
	// otherwise.
	LogFormatAuto LogFormat = "auto"
	// LogFormatText is slog's key=value text format.
	LogFormatText LogFormat = "text"
	// LogFormatJSON is one JSON object per line.
	LogFormatJSON LogFormat = "json"
)

// NewCommandLogger creates the structured logger for fossbox status
// messages. Records below WARN go to stdout and WARN and above go to
// stderr, so a script can separate progress from problems. When the
// format is auto, a terminal on stderr gets slog.TextHandler and
// anything else (CI, pipes, log collectors) gets slog.JSONHandler.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(os.Stdout, os.Stderr, slog.LevelInfo, cli.LogFormatAuto).With(
//	    "command", "run",
//	)
func NewCommandLogger(stdout, stderr io.Writer, level slog.Leveler, format LogFormat) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}

	useJSON := format == LogFormatJSON
	if format == LogFormatAuto || format == "" {
		useJSON = !isTerminal(stderr)
	}

	newHandler := func(w io.Writer) slog.Handler {
		if useJSON {
			return slog.NewJSONHandler(w, options)
		}
		return slog.NewTextHandler(w, options)
	}

	return slog.New(&StreamHandler{
		Status:   newHandler(stdout),
		Problems: newHandler(stderr),
	})
}

// StreamHandler routes records to one of two handlers by level.
type StreamHandler struct {
	// Status receives records below slog.LevelWarn.
	Status slog.Handler
	// Problems receives slog.LevelWarn and above.
	Problems slog.Handler
}

func (h *StreamHandler) pick(level slog.Level) slog.Handler {
	if level >= slog.LevelWarn {
		return h.Problems
	}
	return h.Status
}

// Enabled reports whether the handler for level is enabled.
func (h *StreamHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.pick(level).Enabled(ctx, level)
}

// Handle forwards the record to the handler for its level.
func (h *StreamHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.pick(record.Level).Handle(ctx, record)
}

// WithAttrs applies attrs to both handlers.
func (h *StreamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StreamHandler{
		Status:   h.Status.WithAttrs(attrs),
		Problems: h.Problems.WithAttrs(attrs),
	}
}

// WithGroup applies the group to both handlers.
func (h *StreamHandler) WithGroup(name string) slog.Handler {
	return &StreamHandler{
		Status:   h.Status.WithGroup(name),
		Problems: h.Problems.WithGroup(name),
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
