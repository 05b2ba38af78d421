// Package logx builds the structured loggers used across the registry:
// text output for interactive CLI use, JSON for daemon/service use, both
// optionally rotated through lumberjack when a log file path is set.
package logx

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// JSON selects the JSON handler; otherwise text.
	JSON bool
	// FilePath, if set, routes output through a rotating lumberjack writer
	// instead of stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      slog.Level
}

// New builds a *slog.Logger per opts.
func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stderr
	if opts.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
	}

	hOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, hOpts)
	} else {
		handler = slog.NewTextHandler(w, hOpts)
	}
	return slog.New(handler)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
