// Package config loads the flowcanvas configuration file.
//
// Config file locations (priority order):
//  1. $FLOWCANVAS_CONFIG
//  2. ./flowcanvas.yaml
//  3. ~/.config/flowcanvas/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a config file fails validation
var ErrInvalidConfig = errors.New("invalid config")

const (
	defaultAddr             = ":8080"
	defaultKeepAlive        = 30 * time.Second
	defaultExecutionTimeout = 30 * time.Second
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.KeepAlive == 0 {
		c.Server.KeepAlive = Duration(defaultKeepAlive)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Execution.Timeout == 0 {
		c.Execution.Timeout = Duration(defaultExecutionTimeout)
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ExecutionEnabled reports whether a backend endpoint is configured
func (c *Config) ExecutionEnabled() bool {
	return c.Execution.Endpoint != ""
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	catalog := "built-in"
	switch {
	case c.Catalog.Database != "":
		catalog = "database " + c.Catalog.Database
	case c.Catalog.Path != "":
		catalog = "file " + c.Catalog.Path
		if c.Catalog.Watch {
			catalog += " (watched)"
		}
	}
	execution := "disabled"
	if c.ExecutionEnabled() {
		execution = fmt.Sprintf("%s (timeout %s)", c.Execution.Endpoint, c.Execution.Timeout.Duration())
	}
	return fmt.Sprintf("Listen: %s, Log: %s/%s\nCatalog: %s\nExecution: %s",
		c.Server.Addr, c.Log.Level, c.Log.Format, catalog, execution)
}
