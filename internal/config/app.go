package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers accepted by storage.driver.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// AppConfig holds deployment parameters read from config.yaml and the environment.
type AppConfig struct {
	Backend struct {
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"backend"`
	Poll struct {
		Interval    time.Duration `yaml:"interval"`
		MaxAttempts int           `yaml:"max_attempts"`
	} `yaml:"poll"`
	Storage struct {
		Driver      string `yaml:"driver"`
		Path        string `yaml:"path"`
		SQLitePath  string `yaml:"sqlite_path"`
		RedisURL    string `yaml:"redis_url"`
		RedisPrefix string `yaml:"redis_prefix"`
	} `yaml:"storage"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() AppConfig {
	var cfg AppConfig
	cfg.Backend.BaseURL = "http://127.0.0.1:5000"
	cfg.Backend.Timeout = 30 * time.Second
	cfg.Backend.UserAgent = "yousum"
	cfg.Poll.Interval = 2 * time.Second
	cfg.Poll.MaxAttempts = 30
	cfg.Storage.Driver = DriverJSON
	cfg.Storage.Path = filepath.Join(DataDir(), "settings.json")
	cfg.Storage.SQLitePath = filepath.Join(DataDir(), "yousum.db")
	cfg.Storage.RedisURL = "redis://127.0.0.1:6379/0"
	cfg.Log.Level = "info"
	return cfg
}

// DefaultConfigPath is the config.yaml location inside the data directory.
func DefaultConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// LoadAppConfig reads path (missing file means defaults), then applies .env and
// environment overrides.
func LoadAppConfig(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	applyEnv(&cfg)

	return cfg.withFallbacks(), nil
}

// applyEnv overrides config values from YOUSUM_* variables.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("YOUSUM_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("YOUSUM_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("YOUSUM_REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("YOUSUM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// withFallbacks replaces zero or invalid values with defaults.
func (c AppConfig) withFallbacks() AppConfig {
	def := DefaultAppConfig()
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = def.Backend.Timeout
	}
	if c.Backend.UserAgent == "" {
		c.Backend.UserAgent = def.Backend.UserAgent
	}
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = def.Poll.Interval
	}
	if c.Poll.MaxAttempts <= 0 {
		c.Poll.MaxAttempts = def.Poll.MaxAttempts
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverJSON
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = def.Storage.SQLitePath
	}
	if c.Storage.RedisURL == "" {
		c.Storage.RedisURL = def.Storage.RedisURL
	}
	return c
}

// LogLevel maps log.level to a slog level, defaulting to info.
func (c AppConfig) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the JSON logger used by the window and the CLI.
func (c AppConfig) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel()}))
}

// OpenStore builds the settings store selected by storage.driver. The returned
// close function is never nil.
func (c AppConfig) OpenStore() (Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Storage.Driver {
	case DriverJSON:
		return NewJSONStore(c.Storage.Path), noop, nil
	case DriverSQLite:
		store, err := OpenSQLiteStore(c.Storage.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case DriverRedis:
		store, err := OpenRedisStore(c.Storage.RedisURL, c.Storage.RedisPrefix)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

// StorageLocation describes where settings are persisted, for diagnostics.
func (c AppConfig) StorageLocation() string {
	switch c.Storage.Driver {
	case DriverSQLite:
		return c.Storage.SQLitePath
	case DriverRedis:
		return c.Storage.RedisURL
	default:
		return c.Storage.Path
	}
}
