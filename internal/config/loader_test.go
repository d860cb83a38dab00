package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/config.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/config.json", loader.configPath)
	assert.Equal(t, "/path/to/config.json", loader.GetConfigPath())
}

func TestLoaderLoad(t *testing.T) {
	t.Run("load default config when file doesn't exist", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nonexistent.json")

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.NotEmpty(t, cfg.DataDir)
		assert.NotEmpty(t, cfg.Logging.File)
	})

	t.Run("load config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		testConfig := `{
			"events_file": "/var/log/terminals.txt",
			"data_dir": "` + filepath.ToSlash(tmpDir) + `",
			"server": {"port": 9090, "host": "0.0.0.0"},
			"reload": {"schedule": "@every 1m"},
			"tracing": {"sample_ratio": 0.25}
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, "/var/log/terminals.txt", cfg.EventsFile)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, "@every 1m", cfg.Reload.Schedule)
		assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
		assert.True(t, cfg.Tracing.Enabled)
		// untouched defaults survive
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, filepath.Join(tmpDir, "loginstats.log"), cfg.Logging.File)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.json")
		require.NoError(t, os.WriteFile(configPath, []byte("invalid json"), 0644))

		_, err := NewLoader(configPath).Load()
		assert.Error(t, err)
	})

	t.Run("schema violation", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"server": {"port": "eighty"}}`), 0644))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema")
	})

	t.Run("unknown key", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"mailer": {}}`), 0644))

		_, err := NewLoader(configPath).Load()
		assert.Error(t, err)
	})
}

func TestLoaderSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.json")

	cfg := DefaultConfig()
	cfg.EventsFile = "events.txt"
	cfg.Database.Path = "events.db"
	cfg.Server.Port = 7070

	loader := NewLoader(configPath)
	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "events.txt", loaded.EventsFile)
	assert.Equal(t, "events.db", loaded.Database.Path)
	assert.Equal(t, 7070, loaded.Server.Port)
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument([]byte(`{"logging": {"level": "debug"}}`)))
	assert.Error(t, ValidateDocument([]byte(`{"logging": {"level": "verbose"}}`)))
	assert.Error(t, ValidateDocument([]byte(`{"server": {"port": 70000}}`)))
	assert.NoError(t, ValidateDocument([]byte(`{"tracing": {"enabled": false, "sample_ratio": 0}}`)))
	assert.Error(t, ValidateDocument([]byte(`{"tracing": {"sample_ratio": 2}}`)))
}
