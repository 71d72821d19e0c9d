package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadWithSources loads configuration from multiple sources in priority
// order and tracks the source of each value:
// 1. Defaults
// 2. User config file (~/.fieldtree/fieldtree.toml or OS-specific config dir)
// 3. Project config file (fieldtree.toml or .fieldtree.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults
	setDefaults(cfg)
	for _, field := range Fields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 4. Override from environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Normalize and validate
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// LoadFile decodes a single TOML file over the defaults. Keys the file does
// not define keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, path, map[string]ConfigSource{}, SourceProjFile); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Output = DefaultOutput
	cfg.Indent = DefaultIndent
	cfg.StrictAdditional = false
	cfg.RemoveExtraFields = false
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// loadConfigFile decodes TOML config from path over cfg and records the
// keys the file defines. Unknown keys are an error.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, field := range Fields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig normalizes values and validates settings.
func finalizeConfig(cfg *Config) error {
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	return cfg.Validate()
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
