// Package config loads evtxctl settings from YAML.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/evtxkit/pkg/evtx"
)

// Config is the on-disk configuration.
type Config struct {
	Workers         int           `yaml:"workers"`
	MaxDepth        int           `yaml:"max_depth"`
	VerifyChecksums *bool         `yaml:"verify_checksums,omitempty"`
	Logging         LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultMaxDepth matches the decoder's default nesting limit.
const DefaultMaxDepth = 256

// Load reads, defaults and validates the YAML file at path. Environment
// variables in the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.VerifyChecksums == nil {
		v := true
		c.VerifyChecksums = &v
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true, "console": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// Verify reports the effective checksum verification setting.
func (c *Config) Verify() bool {
	return c.VerifyChecksums == nil || *c.VerifyChecksums
}

// LoadOptions converts the configuration into evtx load options.
func (c *Config) LoadOptions(log *zerolog.Logger) evtx.Options {
	return evtx.Options{
		Workers:       c.Workers,
		MaxDepth:      c.MaxDepth,
		SkipChecksums: !c.Verify(),
		Logger:        log,
	}
}
