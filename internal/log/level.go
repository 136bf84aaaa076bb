package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level represents the severity of a log message
type Level int

const (
	// LevelDebug is for request and state transition details
	LevelDebug Level = iota
	// LevelInfo is for completed operations
	LevelInfo
	// LevelWarn is for recoverable problems such as a discarded session slot
	LevelWarn
	// LevelError is for failed operations
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelAliases = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ToSlogLevel converts l to the matching slog.Level.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LookupLevel parses s strictly.
func LookupLevel(s string) (Level, error) {
	l, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q (supported: debug, info, warn, error)", s)
	}
	return l, nil
}

// ParseLevel parses s leniently. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	l, _ := LookupLevel(s)
	return l
}
