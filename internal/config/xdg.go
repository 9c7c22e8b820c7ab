// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "tuifocus"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultLogPath returns the default location of the session event log.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appDir, "focus.log")
}

// DefaultExportDir returns the directory used by stats exports.
func DefaultExportDir() string {
	return filepath.Join(XDGDataHome(), appDir, "exports")
}
