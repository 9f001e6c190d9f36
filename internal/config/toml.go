// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Judge JudgeConfig `toml:"judge"`
	Kiosk KioskConfig `toml:"kiosk"`
	Log   LogConfig   `toml:"log"`
}

// JudgeConfig maps execution service settings.
type JudgeConfig struct {
	URL            *string   `toml:"url"`
	Host           *string   `toml:"host"`
	Language       *string   `toml:"language"`
	PollInterval   *Duration `toml:"poll-interval"`
	MaxWait        *Duration `toml:"max-wait"`
	RequestTimeout *Duration `toml:"request-timeout"`
}

// KioskConfig maps kiosk behavior settings.
type KioskConfig struct {
	Passcode          *string `toml:"passcode"`
	UnlockMaxAttempts *int    `toml:"unlock-max-attempts"`
	Challenges        *string `toml:"challenges"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	Path   *string `toml:"path"`
}

// Duration is a time.Duration written as a Go duration string ("1s", "1m30s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
