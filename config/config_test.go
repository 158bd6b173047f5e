package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFiles()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreFile || cfg.SaveDir != "saves" || cfg.SaveFormat != "json" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("level = %v, want warn", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GAMEDISK_SAVE_STORE", "redis")
	t.Setenv("GAMEDISK_REDIS_TTL", "2h")
	t.Setenv("GAMEDISK_LOG_LEVEL", "DEBUG")
	t.Setenv("GAMEDISK_PLAIN", "true")

	cfg, err := LoadFiles()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreRedis || cfg.RedisTTL != 2*time.Hour || !cfg.Plain {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.Level())
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GAMEDISK_SAVE_DIR=/tmp/from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GAMEDISK_SAVE_DIR", "")
	os.Unsetenv("GAMEDISK_SAVE_DIR")

	cfg, err := LoadFiles(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDir != "/tmp/from-dotenv" {
		t.Errorf("SaveDir = %q", cfg.SaveDir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad store", "GAMEDISK_SAVE_STORE", "postgres", "unknown store"},
		{"bad format", "GAMEDISK_LOG_FORMAT", "xml", "unknown format"},
		{"bad ttl", "GAMEDISK_REDIS_TTL", "soon", "parse env:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadFiles()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
