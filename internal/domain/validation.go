package domain

import (
	"math"
	"strings"
)

// ValidateThreshold validates a similarity threshold.
// Values above 1 are accepted and simply match nothing.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return ConfigErrorf("invalid threshold: must be a finite number")
	}
	if threshold < 0 {
		return ConfigErrorf("invalid threshold %g: must not be negative", threshold)
	}
	return nil
}

// ValidateColumnName validates a configured column name
func ValidateColumnName(flag, column string) error {
	if strings.TrimSpace(column) == "" {
		return ConfigErrorf("invalid %s: column name cannot be empty", flag)
	}
	return nil
}

// ValidateLogLevel validates a log level name
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return ConfigErrorf("invalid log level %q: must be one of: debug, info, warn, error", level)
	}
}

// ValidateFormat validates a report output format
func ValidateFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return ConfigErrorf("invalid format %q: must be one of: table, json, yaml", format)
	}
}
