package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config represents the main loginstats configuration
type Config struct {
	// Events file in "<signed-terminal> <epoch-millis> <username>" format
	EventsFile string `json:"events_file" mapstructure:"events_file"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Database
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Reload configuration
	Reload ReloadConfig `json:"reload" mapstructure:"reload"`

	// Tracing configuration
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`
}

// DatabaseConfig holds the SQLite event archive settings
type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// ServerConfig holds HTTP query server configuration
type ServerConfig struct {
	Port         int    `json:"port" mapstructure:"port"`
	Host         string `json:"host" mapstructure:"host"`
	SharedSecret string `json:"shared_secret" mapstructure:"shared_secret"`
}

// ReloadConfig controls when the server rebuilds its ledger
type ReloadConfig struct {
	Watch      bool   `json:"watch" mapstructure:"watch"`
	DebounceMs int    `json:"debounce_ms" mapstructure:"debounce_ms"`
	Schedule   string `json:"schedule" mapstructure:"schedule"` // cron spec, e.g. "@every 5m"
}

// TracingConfig controls the span pipeline of the serve command.
// SampleRatio is the share of new traces recorded, between 0 and 1.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" mapstructure:"enabled"`
	SampleRatio float64 `json:"sample_ratio" mapstructure:"sample_ratio"`
}

// Source values reported by Config.Source
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Server: ServerConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Reload: ReloadConfig{
			Watch:      true,
			DebounceMs: 200,
		},
		Tracing: TracingConfig{
			Enabled:     true,
			SampleRatio: 1,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Source reports where events are loaded from. The events file wins when
// both are configured.
func (c *Config) Source() string {
	if c.EventsFile != "" {
		return SourceFile
	}
	if c.Database.Path != "" {
		return SourceDatabase
	}
	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := NewValidator()

	if err := v.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.MaxSize < 0 {
		return fmt.Errorf("logging max_size must not be negative, got %d", c.Logging.MaxSize)
	}
	if c.Logging.MaxAge < 0 {
		return fmt.Errorf("logging max_age must not be negative, got %d", c.Logging.MaxAge)
	}

	if err := v.ValidatePort(c.Server.Port); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server host is required")
	}

	if c.Reload.DebounceMs < 0 {
		return fmt.Errorf("reload debounce_ms must not be negative, got %d", c.Reload.DebounceMs)
	}
	if err := v.ValidateSchedule(c.Reload.Schedule); err != nil {
		return err
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample_ratio must be between 0 and 1, got %g", c.Tracing.SampleRatio)
	}

	return nil
}
