package log

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger installs logger as the process-wide logger and routes
// the standard slog default through it, so library code logging with
// slog.Info lands in the same sink. A nil logger restores the lazy default.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
	if logger != nil {
		slog.SetDefault(logger.slog)
	}
}

// DefaultLogger returns the process-wide logger, creating one with
// DefaultConfig on first use.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, Default())
	return defaultLogger.Load()
}
