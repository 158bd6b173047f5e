// Package storage opens the save store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nathoo/gamedisk/config"
	"github.com/nathoo/gamedisk/engine/save"
	"github.com/nathoo/gamedisk/storage/filestore"
	"github.com/nathoo/gamedisk/storage/redisstore"
	"github.com/nathoo/gamedisk/storage/sqlitestore"
)

// Open returns the configured store and a function releasing it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (save.Store, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreFile:
		format, err := filestore.ParseFormat(cfg.SaveFormat)
		if err != nil {
			return nil, nil, err
		}
		s, err := filestore.Open(cfg.SaveDir, format, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case config.StoreSQLite:
		s, err := sqlitestore.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StoreRedis:
		s, err := redisstore.Open(ctx, cfg.RedisURL, redisstore.Options{TTL: cfg.RedisTTL, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown save store %q", cfg.Store)
}
