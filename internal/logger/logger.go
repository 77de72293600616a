// Package logger holds the process-wide structured logger used by the allocators.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. By default it writes warnings and errors as
// text to stderr, so exhaustion and destructive resets are visible without any
// setup. Call Init() or Set() to reconfigure.
var L *slog.Logger = newDefault()

func newDefault() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// Options configures the logger initialization.
type Options struct {
	Enabled bool         // If false, all logging is discarded
	Output  io.Writer    // Destination. Default: os.Stderr
	Level   slog.Leveler // Minimum log level. Default: LevelWarn when nil
	JSON    bool         // Emit JSON records instead of text
}

// Init configures logging. If opts.Enabled is false, all log output is discarded.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var level slog.Leveler = slog.LevelWarn
	if opts.Level != nil {
		level = opts.Level
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, handlerOpts))
		return
	}
	L = slog.New(slog.NewTextHandler(out, handlerOpts))
}

// Set replaces the global logger. A nil logger restores the default.
func Set(l *slog.Logger) {
	if l == nil {
		l = newDefault()
	}
	L = l
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
