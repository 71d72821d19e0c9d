// Package logging builds the leveled console logger used by the CLI.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPrefix is the prefix on every CLI log line.
const DefaultPrefix = "fieldtree"

// Options holds configuration for console logging.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultOptions returns default options for console logging.
func DefaultOptions() Options {
	return Options{
		Level:     log.WarnLevel,
		Formatter: log.TextFormatter,
		Prefix:    DefaultPrefix,
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// NewFromConfig creates a logger from string configuration values, as
// loaded from TOML, the environment, or flags.
func NewFromConfig(w io.Writer, level, format string, timestamps, caller bool) *log.Logger {
	return New(w, Options{
		Level:           ParseLevel(level),
		Formatter:       ParseFormatter(format),
		ReportTimestamp: timestamps,
		ReportCaller:    caller,
		Prefix:          DefaultPrefix,
	})
}

// ParseLevel parses a string log level. Unknown levels read as warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter parses a formatter name. Unknown names read as text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return New(io.Discard, Options{Level: log.FatalLevel})
}
