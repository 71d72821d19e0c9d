package config

import (
	"os"
	"strconv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FIELDTREE_"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		sources[field] = SourceEnv
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT"); v != "" {
		cfg.Output = v
		setEnv("output")
	}
	if v := os.Getenv(EnvPrefix + "INDENT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Indent = i
			setEnv("indent")
		}
	}
	if v := os.Getenv(EnvPrefix + "STRICT_ADDITIONAL"); v != "" {
		cfg.StrictAdditional = boolFromString(v)
		setEnv("strict_additional")
	}
	if v := os.Getenv(EnvPrefix + "REMOVE_EXTRA_FIELDS"); v != "" {
		cfg.RemoveExtraFields = boolFromString(v)
		setEnv("remove_extra_fields")
	}

	// Logging configuration
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv(EnvPrefix + "LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv(EnvPrefix + "LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}
}
