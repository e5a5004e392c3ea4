// Package config loads viewer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultWidth and DefaultHeight match the 320x240 display mode
	DefaultWidth  = 320
	DefaultHeight = 240

	DefaultWorkers = 4
	DefaultCodec   = "zstd"
	DefaultColors  = 8
)

// Config holds the settings shared by every command.
type Config struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Workers int    `yaml:"workers"`
	Codec   string `yaml:"codec"`
	Colors  int    `yaml:"colors"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Workers: DefaultWorkers,
		Codec:   DefaultCodec,
		Colors:  DefaultColors,
	}
}

// Load reads file over the defaults. An empty file name returns the
// defaults.
func Load(file string) (*Config, error) {
	cfg := Default()
	if file == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", file, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BufferSize returns the size in bytes of an RGBA frame in the display mode.
func (c *Config) BufferSize() int {
	return c.Width * c.Height * 4
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("config: display dimensions must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Colors <= 0 {
		return errors.New("config: colors must be positive")
	}
	return nil
}
