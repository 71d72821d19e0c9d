package config

import (
	"flag"
)

// parseFlags defines the global flags on fs, parses args, and records which
// flags were set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}

	fs.StringVar(&cfg.Output, "output", cfg.Output, "Tree output format (text, json, yaml)")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "Shorthand for -output")
	fs.IntVar(&cfg.Indent, "indent", cfg.Indent, "Spaces per level in written schemas (0 for compact)")
	fs.BoolVar(&cfg.StrictAdditional, "strict", cfg.StrictAdditional, "Reject undeclared object members when checking values")
	fs.BoolVar(&cfg.RemoveExtraFields, "remove-extra", cfg.RemoveExtraFields, "Remove undeclared object members from checked values")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToSource := map[string]string{
		"output":         "output",
		"o":              "output",
		"indent":         "indent",
		"strict":         "strict_additional",
		"remove-extra":   "remove_extra_fields",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToSource[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})

	return nil
}
