package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv(EnvDatabasePath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvWindowDays, "")
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 7, cfg.Forecast.WindowDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "gatherer.db", filepath.Base(cfg.Database.Path))
}

func TestLoadFrom_File(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "~/work/gatherer.db"

[forecast]
window_days = 14

[tasks]
backend = "taskwarrior"
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "work", "gatherer.db"), cfg.Database.Path)
	assert.Equal(t, 14, cfg.Forecast.WindowDays)
	assert.Equal(t, "taskwarrior", cfg.Tasks.Backend)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep their defaults")
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[forecast]\nwindow_days = 14\n"), 0644))

	t.Setenv(EnvDatabasePath, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvWindowDays, "30")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Forecast.WindowDays)
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Run("bad toml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[forecast\n"), 0644))

		_, err := LoadFrom(path)
		assert.ErrorContains(t, err, "parsing config file")
	})

	t.Run("non-positive window", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[forecast]\nwindow_days = 0\n"), 0644))

		_, err := LoadFrom(path)
		assert.ErrorContains(t, err, "window_days")
	})

	t.Run("window too large", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvWindowDays, "200000")

		_, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
		assert.ErrorContains(t, err, "between 1 and 36500")
	})

	t.Run("bad env window", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvWindowDays, "a week")

		_, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
		assert.ErrorContains(t, err, EnvWindowDays)
	})
}

func TestSaveTo_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Database.Path = "/data/gatherer.db"
	cfg.Forecast.WindowDays = 10
	cfg.Tasks.Backend = "dstask"
	cfg.Log.Level = "warn"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
