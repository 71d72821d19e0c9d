package config

import (
	"fmt"
	"strings"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Output formats for rendering field trees.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Default values.
const (
	DefaultOutput    = OutputText
	DefaultIndent    = 2
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for fieldtree.
type Config struct {
	// Output is the format used to print field trees.
	Output string `toml:"output"`
	// Indent is the number of spaces per level in written schema text.
	Indent int `toml:"indent"`

	// StrictAdditional rejects undeclared object members when checking
	// values instead of tolerating them.
	StrictAdditional bool `toml:"strict_additional"`
	// RemoveExtraFields drops undeclared object members from checked values
	// at every level.
	RemoveExtraFields bool `toml:"remove_extra_fields"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
}

// Fields returns the configurable field names, in display order.
func Fields() []string {
	return []string{
		"output",
		"indent",
		"strict_additional",
		"remove_extra_fields",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Validate reports settings with values outside their allowed range.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output %q (expected text|json|yaml)", c.Output)
	}
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("invalid indent %d (expected 0-8)", c.Indent)
	}
	return nil
}

// Value returns the display form of the named field.
func (c *Config) Value(field string) string {
	switch field {
	case "output":
		return c.Output
	case "indent":
		return fmt.Sprint(c.Indent)
	case "strict_additional":
		return fmt.Sprint(c.StrictAdditional)
	case "remove_extra_fields":
		return fmt.Sprint(c.RemoveExtraFields)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	}
	return ""
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
