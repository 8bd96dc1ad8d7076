// Package config loads connection defaults from the XDG config dir. Command
// line flags override whatever is stored here.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/xdg"
)

// Config holds connection-scope settings.
type Config struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	// TypeCast is the connection-scope type cast: "", "true", "false" or a
	// preset name such as "tinybool".
	TypeCast string `json:"type_cast"`
	// TimeZone is an IANA zone name temporal columns are read in. Empty means UTC.
	TimeZone string `json:"time_zone"`
	LogLevel string `json:"log_level"`
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file; a missing file yields defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

// LoadFile reads the config at p; a missing file yields defaults.
func LoadFile(p string) (Config, error) {
	c := Config{LogLevel: "info"}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	return c, nil
}

// Save writes the config with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Cast parses TypeCast into a connection-scope setting.
func (c Config) Cast() (cast.Setting, error) {
	return cast.ParseSetting(c.TypeCast)
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.TimeZone)
}
