// Package config provides configuration loading for noteblock.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gigurra/noteblock/cmd/common"
	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/gigurra/noteblock/cmd/jukebox/catalog"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// Config represents the noteblock configuration file structure.
type Config struct {
	Volume        float64           `yaml:"volume"`
	Repeat        bool              `yaml:"repeat"`
	OnDecodeError string            `yaml:"on_decode_error"`
	Notify        bool              `yaml:"notify"`
	Extensions    []string          `yaml:"extensions,omitempty"`
	Sounds        map[string]string `yaml:"sounds,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Volume:        sound.DefaultVolume,
		OnDecodeError: string(jukebox.PolicySkip),
		Extensions:    append([]string(nil), catalog.DefaultExtensions...),
	}
}

// DefaultPath returns the path to the config file (~/.noteblock/config.yaml).
func DefaultPath() string {
	return filepath.Join(common.AppDir(), "config.yaml")
}

// Load loads the config from path, or from DefaultPath when path is empty.
// Returns default config if file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultConfig().Extensions
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save saves the config to path, or to DefaultPath when path is empty.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Volume <= 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume %v outside (0, 1]", ErrInvalid, c.Volume)
	}
	switch jukebox.DecodePolicy(c.OnDecodeError) {
	case jukebox.PolicySkip, jukebox.PolicyHalt:
	default:
		return fmt.Errorf("%w: on_decode_error must be %q or %q, got %q",
			ErrInvalid, jukebox.PolicySkip, jukebox.PolicyHalt, c.OnDecodeError)
	}
	if _, err := c.SoundTable(); err != nil {
		return err
	}
	return nil
}

// Policy returns the decode error policy.
func (c *Config) Policy() jukebox.DecodePolicy {
	return jukebox.DecodePolicy(c.OnDecodeError)
}

// SoundTable returns the default instrument sounds with the configured
// overrides applied.
func (c *Config) SoundTable() (sound.Table, error) {
	t, err := sound.DefaultTable().WithOverrides(c.Sounds)
	if err != nil {
		return nil, fmt.Errorf("%w: sounds: %v", ErrInvalid, err)
	}
	return t, nil
}
