package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Reload.Watch)
	assert.NoError(t, cfg.Validate())
}

func TestConfigSource(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "", cfg.Source())

	cfg.Database.Path = "/tmp/events.db"
	assert.Equal(t, SourceDatabase, cfg.Source())

	cfg.EventsFile = "/tmp/events.txt"
	assert.Equal(t, SourceFile, cfg.Source())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"negative max size", func(c *Config) { c.Logging.MaxSize = -1 }, "max_size"},
		{"negative max age", func(c *Config) { c.Logging.MaxAge = -1 }, "max_age"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "port must be between"},
		{"empty host", func(c *Config) { c.Server.Host = " " }, "server host"},
		{"negative debounce", func(c *Config) { c.Reload.DebounceMs = -5 }, "debounce_ms"},
		{"bad schedule", func(c *Config) { c.Reload.Schedule = "whenever" }, "invalid reload schedule"},
		{"every schedule", func(c *Config) { c.Reload.Schedule = "@every 5m" }, ""},
		{"cron schedule", func(c *Config) { c.Reload.Schedule = "*/10 * * * *" }, ""},
		{"sample ratio above one", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, "sample_ratio"},
		{"sample ratio zero", func(c *Config) { c.Tracing.SampleRatio = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EventsFile = "events.txt"

	s := cfg.String()
	assert.Contains(t, s, `"events_file": "events.txt"`)
	assert.Contains(t, s, `"port": 8080`)
}
