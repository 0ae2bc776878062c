// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file.
	Path string `yaml:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn"`
}

// SyncConfig controls feed imports.
type SyncConfig struct {
	// FetchTimeout bounds each remote feed download.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// Cron enables the in-process trigger when set, e.g. "*/30 * * * *".
	Cron string `yaml:"cron"`
	// Secret is the bearer secret required by POST /sync.
	Secret string `yaml:"secret"`
}

// FeedConfig controls the exported calendar feed.
type FeedConfig struct {
	// Secret signs per-tenant feed tokens.
	Secret string `yaml:"secret"`
	// BaseURL is the public URL the feed links are built from.
	BaseURL string `yaml:"base_url"`
}

// Config is the top-level service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Feed     FeedConfig     `yaml:"feed"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:       ":8099",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "/data/rentalsync.db",
		},
		Sync: SyncConfig{
			FetchTimeout: 30 * time.Second,
		},
		Feed: FeedConfig{
			BaseURL: "http://localhost:8099",
		},
	}
}

// Normalize fills in missing values so partially-filled files still work.
func (c *Config) Normalize() {
	defaults := DefaultConfig()

	if c.Server.Listen == "" {
		c.Server.Listen = defaults.Server.Listen
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = defaults.Server.IdleTimeout
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = defaults.Database.Driver
	}
	if c.Database.Path == "" {
		c.Database.Path = defaults.Database.Path
	}

	if c.Sync.FetchTimeout <= 0 {
		c.Sync.FetchTimeout = defaults.Sync.FetchTimeout
	}
	c.Sync.Cron = strings.TrimSpace(c.Sync.Cron)

	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = defaults.Feed.BaseURL
	}
	c.Feed.BaseURL = strings.TrimRight(c.Feed.BaseURL, "/")
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults. A missing file, or an empty path, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() error {
	c.Server.Listen = getEnv("RENTALSYNC_LISTEN", c.Server.Listen)
	c.Database.Driver = getEnv("RENTALSYNC_DB_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("RENTALSYNC_DB_PATH", c.Database.Path)
	c.Database.DSN = getEnv("DATABASE_URL", c.Database.DSN)
	c.Sync.Cron = getEnv("RENTALSYNC_SYNC_CRON", c.Sync.Cron)
	c.Sync.Secret = getEnv("RENTALSYNC_SYNC_SECRET", c.Sync.Secret)
	c.Feed.Secret = getEnv("RENTALSYNC_FEED_SECRET", c.Feed.Secret)
	c.Feed.BaseURL = getEnv("RENTALSYNC_FEED_BASE_URL", c.Feed.BaseURL)

	if v := os.Getenv("RENTALSYNC_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing RENTALSYNC_FETCH_TIMEOUT: %w", err)
		}
		c.Sync.FetchTimeout = d
	}
	return nil
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
