// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.fieldtree/fieldtree.toml or OS-specific config directory)
// 3. Project config file (fieldtree.toml or .fieldtree.toml in the working directory)
// 4. Environment variables (FIELDTREE_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.fieldtree/fieldtree.toml (preferred)
// - Windows: %APPDATA%\fieldtree\fieldtree.toml
// - macOS: ~/Library/Application Support/fieldtree/fieldtree.toml
// - Linux/BSD: $XDG_CONFIG_HOME/fieldtree/fieldtree.toml or ~/.config/fieldtree/fieldtree.toml
//
// Project-level config locations (overrides user config):
// - ./fieldtree.toml (preferred)
// - ./.fieldtree.toml
package config
