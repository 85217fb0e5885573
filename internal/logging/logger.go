// Package logging builds the process-wide structured logger for the
// synchronization core.
package logging

import (
	"log/slog"
	"os"
)

// NewLogger returns the process logger. Production gets JSON at info
// level; everything else gets human-readable text with debug enabled.
func NewLogger(production bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if production {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	opts.Level = slog.LevelDebug

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
