// Package redisstore keeps save slots in Redis: one JSON string per slot plus
// a set indexing the slot names.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nathoo/gamedisk/engine/save"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "gamedisk"

// Store is a Redis-backed save store.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ save.Store = (*Store)(nil)

// Options configures a Store.
type Options struct {
	Prefix string        // key prefix, DefaultPrefix when empty
	TTL    time.Duration // slot expiry, zero keeps slots forever
	Logger *slog.Logger
}

// Open connects to the Redis server at redisURL and verifies the connection.
func Open(ctx context.Context, redisURL string, opts Options) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s := New(rdb, opts)
	s.logger.Info("Connected to Redis for saves", "addr", opt.Addr, "prefix", s.prefix)
	return s, nil
}

// New wraps an existing client.
func New(rdb *redis.Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{rdb: rdb, prefix: opts.Prefix, ttl: opts.TTL, logger: opts.Logger}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) key(slot string) string { return s.prefix + ":save:" + slot }

func (s *Store) indexKey() string { return s.prefix + ":saves" }

// Save writes the slot and indexes it in one transaction.
func (s *Store) Save(ctx context.Context, slot string, snap *save.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return save.Fail("save", slot, err)
	}
	if err := save.CheckSlot(slot); err != nil {
		return save.Fail("save", slot, err)
	}
	data, err := save.Encode(snap)
	if err != nil {
		return save.Fail("save", slot, err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(slot), data, s.ttl)
		p.SAdd(ctx, s.indexKey(), slot)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save game", "slot", slot, "error", err)
		return save.Fail("save", slot, err)
	}
	s.logger.Debug("Saved game", "slot", slot, "turn", snap.Turn)
	return nil
}

// Load reads a slot.
func (s *Store) Load(ctx context.Context, slot string) (*save.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, save.Fail("load", slot, err)
	}
	data, err := s.rdb.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("slot %q: %w", slot, save.ErrSlotNotFound)
	}
	if err != nil {
		return nil, save.Fail("load", slot, err)
	}
	snap, err := save.Decode(data)
	if err != nil {
		return nil, save.Fail("load", slot, err)
	}
	return snap, nil
}

// List returns the indexed slots, sorted by name. Index entries whose slot
// has expired are pruned.
func (s *Store) List(ctx context.Context) ([]save.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, save.Fail("list", "", err)
	}
	slots, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, save.Fail("list", "", err)
	}
	sort.Strings(slots)

	var infos []save.Info
	for _, slot := range slots {
		snap, err := s.Load(ctx, slot)
		if errors.Is(err, save.ErrSlotNotFound) {
			s.rdb.SRem(ctx, s.indexKey(), slot)
			continue
		}
		if err != nil {
			s.logger.Warn("Skipping unreadable save", "slot", slot, "error", err)
			continue
		}
		infos = append(infos, snap.Info(slot))
	}
	return infos, nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return save.Fail("delete", slot, err)
	}
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, s.key(slot))
		p.SRem(ctx, s.indexKey(), slot)
		return nil
	})
	if err != nil {
		return save.Fail("delete", slot, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("slot %q: %w", slot, save.ErrSlotNotFound)
	}
	return nil
}
