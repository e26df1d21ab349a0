package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/pdxmph/gatherer/internal/project"
)

// Environment variables that override the config file
const (
	EnvDatabasePath = "GATHERER_DB"
	EnvLogLevel     = "GATHERER_LOG_LEVEL"
	EnvWindowDays   = "GATHERER_WINDOW_DAYS"
)

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Forecast ForecastConfig `toml:"forecast"`
	Tasks    TasksConfig    `toml:"tasks"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ForecastConfig holds the estimate settings
type ForecastConfig struct {
	// WindowDays is the trailing window used for velocity and rate
	WindowDays int `toml:"window_days"`
}

// TasksConfig selects the external task manager used for imports
type TasksConfig struct {
	// Backend is "taskwarrior", "dstask", "noop", or empty to auto-detect
	Backend string `toml:"backend"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level"`
}

// Dir returns the gatherer config directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "gatherer"), nil
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "gatherer", "gatherer.db"),
		},
		Forecast: ForecastConfig{
			WindowDays: project.DefaultWindowDays,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.toml"))
}

// LoadFrom loads configuration from a specific path, then applies
// environment overrides
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Check if config file exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Expand home directory in paths
	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}

	if cfg.Forecast.WindowDays <= 0 || cfg.Forecast.WindowDays > project.MaxWindowDays {
		return nil, fmt.Errorf("forecast.window_days must be between 1 and %d, got %d",
			project.MaxWindowDays, cfg.Forecast.WindowDays)
	}

	return cfg, nil
}

// applyEnv overrides fields from GATHERER_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvWindowDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvWindowDays, err)
		}
		c.Forecast.WindowDays = days
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(dir, "config.toml"))
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
