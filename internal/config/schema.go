package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Execution ExecutionConfig `yaml:"execution"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr      string   `yaml:"addr" validate:"required"`
	KeepAlive Duration `yaml:"keep_alive"` // SSE keep-alive interval
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// CatalogConfig says where operator schemas come from. With neither set the
// built-in schemas are used; a database wins over the file when both hold schemas.
type CatalogConfig struct {
	Path     string `yaml:"path,omitempty"`     // YAML catalog file
	Database string `yaml:"database,omitempty"` // sqlite catalog store
	Watch    bool   `yaml:"watch"`              // reload Path when it changes
}

// ExecutionConfig holds the execution backend settings. An empty endpoint
// disables execution.
type ExecutionConfig struct {
	Endpoint string   `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Timeout  Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
