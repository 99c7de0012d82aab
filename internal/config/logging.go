// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds a logger from the logging section. verbose forces debug
// level. A nil w writes to stderr.
func (l LoggingConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: l.level(verbose)}

	var handler slog.Handler
	switch strings.ToLower(l.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func (l LoggingConfig) level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
