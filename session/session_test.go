package session

import (
	"context"
	"strings"
	"testing"

	"github.com/nathoo/gamedisk/disks/tower"
	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/storage/filestore"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	eng, err := engine.LoadDisk(tower.New)
	if err != nil {
		t.Fatal(err)
	}
	store, err := filestore.Open(t.TempDir(), filestore.JSON, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(eng, store, nil)
}

func joined(out Output) string {
	return strings.Join(append(append([]string{}, out.Lines...), out.System...), "\n")
}

func TestHandle_GameCommand(t *testing.T) {
	s := newTestSession(t)
	out := s.Handle(context.Background(), "n")
	if !strings.Contains(joined(out), "Library") || len(out.System) != 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestHandle_Again(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	if out := s.Handle(ctx, "g"); !strings.Contains(joined(out), "Nothing to repeat") {
		t.Errorf("out = %+v", out)
	}
	s.Handle(ctx, "n")
	s.Handle(ctx, "s")
	s.Handle(ctx, "again")
	if s.Engine.Disk.RoomID != tower.Foyer {
		t.Errorf("room = %q", s.Engine.Disk.RoomID)
	}
	if s.Engine.Disk.Turn != 3 {
		t.Errorf("turn = %d, want 3", s.Engine.Disk.Turn)
	}
}

func TestSaveLoadDelete(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	s.Handle(ctx, "n")
	if out := s.Handle(ctx, "/save"); !strings.Contains(joined(out), "Game saved to quicksave.") {
		t.Fatalf("save: %+v", out)
	}
	s.Handle(ctx, "take ledger")
	s.Handle(ctx, "s")

	out := s.Handle(ctx, "/load")
	if !strings.Contains(joined(out), "Game loaded from quicksave (turn 1).") {
		t.Fatalf("load: %+v", out)
	}
	if !strings.Contains(strings.Join(out.Lines, "\n"), "Library") {
		t.Errorf("expected room description after load: %+v", out.Lines)
	}
	if s.Engine.Disk.RoomID != tower.Library || len(s.Engine.Disk.Inventory) != 0 {
		t.Errorf("room %q inventory %+v", s.Engine.Disk.RoomID, s.Engine.Disk.Inventory)
	}

	if out := s.Handle(ctx, "/saves"); !strings.Contains(joined(out), "quicksave") {
		t.Errorf("saves: %+v", out)
	}
	if out := s.Handle(ctx, "/delete quicksave"); !strings.Contains(joined(out), "Deleted quicksave.") {
		t.Errorf("delete: %+v", out)
	}
	if out := s.Handle(ctx, "/delete quicksave"); !strings.Contains(joined(out), "No save named quicksave.") {
		t.Errorf("second delete: %+v", out)
	}
	if out := s.Handle(ctx, "/saves"); !strings.Contains(joined(out), "No saved games.") {
		t.Errorf("saves: %+v", out)
	}
}

func TestLoadFailureLeavesGameUntouched(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, "n")

	for _, cmd := range []string{"/load missing", "/load ../etc"} {
		out := s.Handle(ctx, cmd)
		if !strings.Contains(joined(out), "Load failed") {
			t.Errorf("%s: %+v", cmd, out)
		}
	}
	if s.Engine.Disk.RoomID != tower.Library || s.Engine.Disk.Turn != 1 {
		t.Errorf("room %q turn %d", s.Engine.Disk.RoomID, s.Engine.Disk.Turn)
	}
}

func TestNoStore(t *testing.T) {
	eng, err := engine.LoadDisk(tower.New)
	if err != nil {
		t.Fatal(err)
	}
	s := New(eng, nil, nil)
	if out := s.Handle(context.Background(), "/save"); !strings.Contains(joined(out), "saving is disabled") {
		t.Errorf("out = %+v", out)
	}
}

func TestMeta(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if out := s.Handle(ctx, "/quit"); !out.Quit {
		t.Error("expected quit")
	}
	if out := s.Handle(ctx, "/frobnicate"); !strings.Contains(joined(out), "Unknown command: /frobnicate") {
		t.Errorf("out = %+v", out)
	}
	if out := s.Handle(ctx, "/state"); !strings.Contains(joined(out), "Location: foyer") {
		t.Errorf("out = %+v", out)
	}

	s.Handle(ctx, "/trace")
	out := s.Handle(ctx, "look coins")
	text := joined(out)
	if !strings.Contains(text, "[trace]   spawn_item") || !strings.Contains(text, "[trace]   set_room_flag") {
		t.Errorf("trace output:\n%s", text)
	}
	if out := s.Handle(ctx, "/trace"); !strings.Contains(joined(out), "disabled") {
		t.Errorf("out = %+v", out)
	}
}
