// Package config loads the YAML settings shared by the CLI commands.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"progressive-upscaler/internal/codec"
	"progressive-upscaler/internal/core"
	imageio "progressive-upscaler/internal/io"
	"progressive-upscaler/internal/resample"
)

// Config is the on-disk configuration.
type Config struct {
	Log         LogConfig `yaml:"log"`
	Resampler   string    `yaml:"resampler"`
	Workers     int       `yaml:"workers"`
	Diagnostics bool      `yaml:"diagnostics"`
	Defaults    Defaults  `yaml:"defaults"`

	// MaxFileSize bounds every input file, in bytes.
	MaxFileSize int64          `yaml:"max_file_size"`
	Encoding    EncodingConfig `yaml:"encoding"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EncodingConfig tunes the output encoders.
type EncodingConfig struct {
	PNGCompression int `yaml:"png_compression"`
	WebPMethod     int `yaml:"webp_method"`
}

// Defaults apply to requests that leave a field empty.
type Defaults struct {
	Quality string  `yaml:"quality"`
	Format  string  `yaml:"format"`
	Scale   float64 `yaml:"scale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	enc := codec.DefaultEncoder()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Resampler: resample.BackendLanczos3,
		Workers:   runtime.NumCPU(),
		Defaults: Defaults{
			Quality: "high",
			Format:  "jpeg",
			Scale:   2.0,
		},
		MaxFileSize: imageio.DefaultMaxFileSize,
		Encoding: EncodingConfig{
			PNGCompression: enc.PNGCompression,
			WebPMethod:     enc.WebPMethod,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q (want json or text)", c.Log.Format)
	}
	if _, err := resample.NewResizer(c.Resampler); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", c.Workers)
	}
	if _, err := c.QualityTier(); err != nil {
		return fmt.Errorf("defaults.quality: %w", err)
	}
	if _, fellBack := core.ParseFormat(c.Defaults.Format); fellBack {
		return fmt.Errorf("defaults.format: unknown format %q", c.Defaults.Format)
	}
	if !(c.Defaults.Scale > 0) {
		return fmt.Errorf("defaults.scale: must be positive, got %v", c.Defaults.Scale)
	}
	if c.MaxFileSize < 1 {
		return fmt.Errorf("max_file_size: must be positive, got %d", c.MaxFileSize)
	}
	if c.Encoding.PNGCompression < 0 || c.Encoding.PNGCompression > 9 {
		return fmt.Errorf("encoding.png_compression: must be 0-9, got %d", c.Encoding.PNGCompression)
	}
	if c.Encoding.WebPMethod < 0 || c.Encoding.WebPMethod > 6 {
		return fmt.Errorf("encoding.webp_method: must be 0-6, got %d", c.Encoding.WebPMethod)
	}
	return nil
}

// NewEncoder returns an encoder with the configured settings.
func (c *Config) NewEncoder() *codec.Encoder {
	return &codec.Encoder{
		PNGCompression: c.Encoding.PNGCompression,
		WebPMethod:     c.Encoding.WebPMethod,
	}
}

// QualityTier parses the default quality.
func (c *Config) QualityTier() (core.QualityTier, error) {
	return core.ParseQualityTier(c.Defaults.Quality)
}

// Format parses the default output format.
func (c *Config) Format() core.Format {
	f, _ := core.ParseFormat(c.Defaults.Format)
	return f
}
