package logger

import "strings"

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel parses a level name case-insensitively. Python-style names such as
// WARNING and CRITICAL are accepted; anything unrecognised maps to InfoLevel.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error", "critical", "fatal":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// ValidLevel reports whether ParseLevel recognises the given name.
func ValidLevel(levelStr string) bool {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug", "info", "warn", "warning", "error", "critical", "fatal":
		return true
	}
	return false
}
