package config

import (
	"os"
	"path/filepath"
)

// Discover finds the effective config file path, searching in order: the
// current directory, `$XDG_CONFIG_HOME/<app>/<app>.toml`, then every
// ancestor directory up to the filesystem root. Returns "" if none
// exist; that is not an error — LoadConfig falls back to all defaults.
func Discover() string {
	cwdCandidate := appName + ".toml"
	if _, err := os.Stat(cwdCandidate); err == nil {
		return cwdCandidate
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate := filepath.Join(xdg, appName, appName+".toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", appName, appName+".toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
		candidate := filepath.Join(dir, cwdCandidate)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
}

func defaultLogDirectory() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "state", appName)
}
