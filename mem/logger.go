package mem

import (
	"log/slog"

	"github.com/joshuapare/memkit/internal/logger"
)

// SetLogger replaces the logger used by every memkit package. Passing nil
// restores the default, which writes Warn and above as text to stderr.
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

// Logger returns the logger currently in use.
func Logger() *slog.Logger {
	return logger.L
}
