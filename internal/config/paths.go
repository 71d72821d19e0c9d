package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "fieldtree"

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{appName + ".toml", "." + appName + ".toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.fieldtree/fieldtree.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, "."+appName, appName+".toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, appName, appName+".toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// ExpandPath expands ~ and environment variables in a user-supplied path.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return home
	}
	if strings.HasPrefix(expanded, "~/") || (runtime.GOOS == "windows" && strings.HasPrefix(expanded, "~\\")) {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, expanded[2:])
	}
	return expanded
}
