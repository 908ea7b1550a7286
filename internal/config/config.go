// Package config loads the lou-keys settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/chase3718/lou-keys/internal/keyboard"
	"github.com/chase3718/lou-keys/internal/player"
)

const (
	// DefaultBaseDir is the configuration directory under $HOME
	DefaultBaseDir = ".lou-keys"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config is the contents of config.yaml.
type Config struct {
	// Profile is the keyboard profile to play on (empty for the default)
	Profile string `yaml:"profile,omitempty"`

	// BPM is the playback tempo
	BPM int `yaml:"bpm,omitempty"`

	// RaiseZ is the pen height between keys
	RaiseZ float64 `yaml:"raise_z,omitempty"`

	// Device says how to reach the arm
	Device Device `yaml:"device,omitempty"`

	// Setup is sent to the arm before playing
	Setup []player.GCode `yaml:"setup,omitempty"`

	// Profiles adds keyboards to, or overrides, the builtin ones
	Profiles keyboard.Registry `yaml:"profiles,omitempty"`

	path string
}

// Device is the link to the arm. Serial wins over Address when both are set.
type Device struct {
	Address string        `yaml:"address,omitempty"`
	Serial  string        `yaml:"serial,omitempty"`
	Baud    int           `yaml:"baud,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultPath returns ~/.lou-keys/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultBaseDir, DefaultConfigFile), nil
}

// Default returns the settings used when there is no config file.
func Default() *Config {
	return &Config{
		BPM:    keyboard.DefaultBPM,
		RaiseZ: player.DefaultRaiseZ,
		Setup:  player.DefaultSetup,
		Device: Device{Timeout: 5 * time.Second},
	}
}

// Load reads the config at path, or at DefaultPath when path is empty. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the config back to the path it was loaded from.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string { return c.path }

// Registry returns the builtin profiles merged with the configured ones.
func (c *Config) Registry() (keyboard.Registry, error) {
	reg, err := keyboard.Builtin().Merge(c.Profiles)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", c.path, err)
	}
	return reg, nil
}

// Mapper builds the mapper for the configured profile.
func (c *Config) Mapper() (*keyboard.Mapper, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return keyboard.NewMapper(reg, c.Profile)
}

// Tempo returns the configured tempo.
func (c *Config) Tempo() keyboard.Tempo {
	return keyboard.Tempo{BPM: c.BPM}
}
