// Package config loads driver settings from defaults, a TOML file and
// DBT5_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "DBT5_"

// Config holds the settings shared by every dbt5 command.
type Config struct {
	// Driver is the database/sql driver: "sqlite3" or "pgx".
	Driver string `toml:"driver" env:"DRIVER"`

	// DSN is the data source name for Driver.
	DSN string `toml:"dsn" env:"DSN"`

	// MaxOpenConns caps the Postgres connection pool. Zero means no cap.
	MaxOpenConns int `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	// MetricsAddr is the listen address for the Prometheus handler used by
	// bench. Empty disables it.
	MetricsAddr string `toml:"metrics_addr" env:"METRICS_ADDR"`
}

// Default returns the built-in configuration: a local SQLite file.
func Default() Config {
	return Config{
		Driver:   store.DriverSQLite,
		DSN:      "dbt5.db",
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, then the TOML file at path (skipped
// when path is empty), then DBT5_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile overlays the keys the file defines onto cfg.
func applyFile(cfg *Config, path string) error {
	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("driver") {
		cfg.Driver = strings.TrimSpace(raw.Driver)
	}
	if meta.IsDefined("dsn") {
		cfg.DSN = strings.TrimSpace(raw.DSN)
	}
	if meta.IsDefined("max_open_conns") {
		cfg.MaxOpenConns = raw.MaxOpenConns
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	return nil
}

// Validate checks the driver, pool size and log level.
func (c Config) Validate() error {
	if _, err := store.DialectFor(c.Driver); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DSN == "" {
		return fmt.Errorf("invalid config: dsn is required")
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("invalid config: max_open_conns must be non-negative, got %d", c.MaxOpenConns)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// StoreOptions converts the config to store.Options.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Driver:       c.Driver,
		DSN:          c.DSN,
		MaxOpenConns: c.MaxOpenConns,
	}
}
