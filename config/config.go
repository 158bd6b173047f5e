// Package config loads runtime settings from the environment. An optional
// .env file in the working directory is read first; variables already set in
// the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Save store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	LogLevel  string `env:"GAMEDISK_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"GAMEDISK_LOG_FORMAT" envDefault:"text"`

	Store      string        `env:"GAMEDISK_SAVE_STORE" envDefault:"file"`
	SaveDir    string        `env:"GAMEDISK_SAVE_DIR" envDefault:"saves"`
	SaveFormat string        `env:"GAMEDISK_SAVE_FORMAT" envDefault:"json"`
	SQLitePath string        `env:"GAMEDISK_SQLITE_PATH" envDefault:"gamedisk.db"`
	RedisURL   string        `env:"GAMEDISK_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisTTL   time.Duration `env:"GAMEDISK_REDIS_TTL" envDefault:"0s"`

	// Plain forces the line-oriented front end.
	Plain bool `env:"GAMEDISK_PLAIN"`
}

// Load reads .env (when present) and parses GAMEDISK_* variables.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("GAMEDISK_SAVE_STORE: unknown store %q (want file, sqlite or redis)", c.Store)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("GAMEDISK_LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	return nil
}

// Level returns the parsed log level, defaulting to warn.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
