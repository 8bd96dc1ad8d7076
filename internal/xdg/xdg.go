// Package xdg resolves XDG Base Directory paths for bincast.
package xdg

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the bincast config directory, creating it with private
// permissions (0700) if missing. It falls back to ~/.config/bincast when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "bincast")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
