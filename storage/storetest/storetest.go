// Package storetest runs the behaviour every save.Store must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/gamedisk/engine/save"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// Disk returns a small disk with state in every persisted field.
func Disk() *types.Disk {
	d := &types.Disk{
		Game:   types.GameDef{Title: "Store Test", Start: "hall"},
		RoomID: "attic",
		Rooms: []*types.Room{
			{ID: "hall", Exits: []*types.Exit{{Dir: []string{"up", "u"}, ID: "attic"}}},
			{ID: "attic", Flags: map[string]any{"letterRevealed": true}, Items: []*types.Item{{ID: "letter", Name: []string{"letter"}, IsHidden: true}}},
		},
		Inventory:  []*types.Item{{ID: "lamp", Name: []string{"brass lamp", "lamp"}, IsTakeable: true}},
		Characters: []*types.Character{{ID: "owl", Name: []string{"owl"}, RoomID: "attic", Read: []string{"hoot"}}},
		Flags:      map[string]any{"steps": 4, "solved": true},
		Conversant: "owl",
		Turn:       12,
	}
	state.Normalize(d)
	return d
}

// Run exercises a store created by open. Each subtest gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) save.Store) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		s := open(t)
		session := uuid.New()
		require.NoError(t, s.Save(ctx, "slot1", save.New(Disk(), session)))

		got, err := s.Load(ctx, "slot1")
		require.NoError(t, err)
		assert.Equal(t, session, got.SessionID)
		assert.Equal(t, "Store Test", got.Game)
		assert.Equal(t, 12, got.Turn)
		assert.Equal(t, "attic", got.Disk.RoomID)
		assert.Equal(t, float64(4), got.Disk.Flags["steps"])
		assert.Equal(t, true, got.Disk.Flags["solved"])
		assert.Equal(t, "owl", got.Disk.Conversant)
		assert.True(t, state.HasItem(got.Disk, "lamp"))

		attic, err := state.GetRoom(got.Disk, "attic")
		require.NoError(t, err)
		assert.Equal(t, true, attic.Flags["letterRevealed"])
		require.Len(t, attic.Items, 1)
		assert.True(t, attic.Items[0].IsHidden)
		assert.Equal(t, []string{"hoot"}, got.Disk.Characters[0].Read)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := open(t)
		d := Disk()
		require.NoError(t, s.Save(ctx, "slot1", save.New(d, uuid.New())))
		d.Turn = 13
		d.RoomID = "hall"
		require.NoError(t, s.Save(ctx, "slot1", save.New(d, uuid.New())))

		got, err := s.Load(ctx, "slot1")
		require.NoError(t, err)
		assert.Equal(t, 13, got.Turn)
		assert.Equal(t, "hall", got.Disk.RoomID)

		infos, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	})

	t.Run("missing slot", func(t *testing.T) {
		s := open(t)
		_, err := s.Load(ctx, "nope")
		assert.True(t, errors.Is(err, save.ErrSlotNotFound), "load: %v", err)
		err = s.Delete(ctx, "nope")
		assert.True(t, errors.Is(err, save.ErrSlotNotFound), "delete: %v", err)
	})

	t.Run("invalid slot", func(t *testing.T) {
		s := open(t)
		err := s.Save(ctx, "../escape", save.New(Disk(), uuid.New()))
		var fe *save.FailedError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "save", fe.Op)
	})

	t.Run("list and delete", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Save(ctx, "b", save.New(Disk(), uuid.New())))
		require.NoError(t, s.Save(ctx, "a", save.New(Disk(), uuid.New())))

		infos, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "a", infos[0].Slot)
		assert.Equal(t, "b", infos[1].Slot)
		assert.Equal(t, "attic", infos[0].Room)
		assert.Equal(t, 12, infos[0].Turn)

		require.NoError(t, s.Delete(ctx, "a"))
		infos, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "b", infos[0].Slot)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := open(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := s.Save(cctx, "slot1", save.New(Disk(), uuid.New()))
		assert.Error(t, err)
	})
}
