// Package sqlitestore keeps save slots in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/gamedisk/engine/save"
	"github.com/nathoo/gamedisk/storage/sqlitestore/migrations"
)

// Store provides SQLite-backed save slots.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ save.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts a slot.
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
	info := snap.Info(slot)

	_, err = s.db.ExecContext(ctx, `
INSERT INTO saves (slot, game, room, turn, session_id, saved_at, data)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
	game = excluded.game,
	room = excluded.room,
	turn = excluded.turn,
	session_id = excluded.session_id,
	saved_at = excluded.saved_at,
	data = excluded.data
`,
		slot,
		info.Game,
		info.Room,
		info.Turn,
		snap.SessionID.String(),
		info.SavedAt.UTC().UnixMilli(),
		data,
	)
	if err != nil {
		return save.Fail("save", slot, err)
	}
	s.logger.Debug("saved game", "slot", slot, "turn", info.Turn)
	return nil
}

// Load reads a slot.
func (s *Store) Load(ctx context.Context, slot string) (*save.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, save.Fail("load", slot, err)
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM saves WHERE slot = ?", slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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

// List returns slot summaries from the index columns without decoding the
// snapshots.
func (s *Store) List(ctx context.Context) ([]save.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, save.Fail("list", "", err)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT slot, game, room, turn, saved_at FROM saves ORDER BY slot")
	if err != nil {
		return nil, save.Fail("list", "", err)
	}
	defer rows.Close()

	var infos []save.Info
	for rows.Next() {
		var (
			info    save.Info
			savedAt int64
		)
		if err := rows.Scan(&info.Slot, &info.Game, &info.Room, &info.Turn, &savedAt); err != nil {
			return nil, save.Fail("list", "", err)
		}
		info.SavedAt = time.UnixMilli(savedAt).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, save.Fail("list", "", err)
	}
	return infos, nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return save.Fail("delete", slot, err)
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE slot = ?", slot)
	if err != nil {
		return save.Fail("delete", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return save.Fail("delete", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("slot %q: %w", slot, save.ErrSlotNotFound)
	}
	return nil
}
