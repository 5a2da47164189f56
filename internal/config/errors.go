package config

import (
	"fmt"
	"strings"
)

// Error reports a configuration value that prevents any daemon action.
type Error struct {
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s (got %q)", e.Field, e.Reason, e.Value)
}

// LogLevels lists the accepted log level names in increasing severity.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ValidateLogLevel checks a log level name against LogLevels.
func ValidateLogLevel(level string) error {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		return &Error{Field: "logging.level", Reason: "is required; choose one of " + strings.Join(LogLevels, ", ")}
	}
	for _, known := range LogLevels {
		if normalized == known {
			return nil
		}
	}
	return &Error{Field: "logging.level", Value: level, Reason: "must be one of " + strings.Join(LogLevels, ", ")}
}
