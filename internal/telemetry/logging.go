// Package telemetry wires the ambient observability: structured logging and
// the optional external error tracker.
package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Levels follow zerolog's names; unknown
// values fall back to info. Workers log JSON to stderr; console=true switches
// to the human-readable writer for local runs.
func NewLogger(level string, console bool) zerolog.Logger {
	var w io.Writer = os.Stderr
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	lvl := parseLevel(level)
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
