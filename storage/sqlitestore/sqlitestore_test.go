package sqlitestore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/gamedisk/engine/save"
	"github.com/nathoo/gamedisk/storage/storetest"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) save.Store {
		return openTempStore(t)
	})
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "keep", save.New(storetest.Disk(), uuid.New())))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	snap, err := s.Load(context.Background(), "keep")
	require.NoError(t, err)
	assert.Equal(t, 12, snap.Turn)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ", nil)
	assert.Error(t, err)
}

func TestApplyMigrations_RunsOnce(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n")},
		"002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"README.md": {Data: []byte("ignored")},
	}
	ctx := context.Background()
	require.NoError(t, applyMigrations(ctx, db, fsys, "."))
	// A second run must not try to recreate the tables.
	require.NoError(t, applyMigrations(ctx, db, fsys, "."))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestExtractUp(t *testing.T) {
	assert.Equal(t, "\nX;\n", extractUp("-- +migrate Up\nX;\n-- +migrate Down\nY;"))
	assert.Equal(t, "Z;", extractUp("Z;"))
}
