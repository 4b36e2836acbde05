// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Setup()                                   // from LOG_LEVEL and LOG_FORMAT
//	logging.SetupWith(os.Stderr, slog.LevelDebug, logging.FormatJSON)
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: console (colored, tint) or json (default: console)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Format selects the log handler.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Setup configures the default logger from LOG_LEVEL and LOG_FORMAT.
func Setup() {
	SetupWith(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), ParseFormat(os.Getenv("LOG_FORMAT")))
}

// SetupWith configures the default logger writing to w.
func SetupWith(w io.Writer, level slog.Level, format Format) {
	slog.SetDefault(New(w, level, format))
}

// New returns a logger without installing it.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// ParseLevel reads a level name. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat reads a format name. Unknown names mean console.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatConsole
}
