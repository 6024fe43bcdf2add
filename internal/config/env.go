package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// String reads an environment variable, falling back to defaultValue when
// unset or blank.
func String(key, defaultValue string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	return val
}

// Bool reads an environment variable as a boolean. Only "true" or "false"
// (case-insensitive) are recognised; any other value results in the
// provided default.
func Bool(key string, defaultValue bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}

// Int reads an environment variable as an integer.
func Int(key string, defaultValue int) int {
	val, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return val
}

// Int64 reads an environment variable as a 64-bit integer.
func Int64(key string, defaultValue int64) int64 {
	val, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return defaultValue
	}
	return val
}

// Float reads an environment variable as a float.
func Float(key string, defaultValue float64) float64 {
	val, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return defaultValue
	}
	return val
}

// Duration reads an environment variable as a time.Duration
// (e.g. "500ms", "30s").
func Duration(key string, defaultValue time.Duration) time.Duration {
	val, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return val
}
