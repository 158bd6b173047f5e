package save

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

func testDisk() *types.Disk {
	d := &types.Disk{
		Game:   types.GameDef{Title: "Test Game", Version: "1.0", Start: "hall"},
		RoomID: "garden",
		Rooms: []*types.Room{
			{ID: "hall", Exits: []*types.Exit{{Dir: []string{"north"}, ID: "garden", Block: "Locked."}}},
			{ID: "garden", Flags: map[string]any{"coinTaken": false}, Visits: 2},
		},
		Inventory:  []*types.Item{{ID: "key", Name: []string{"key"}, OnUse: "key.onUse"}},
		Characters: []*types.Character{{ID: "guard", Name: []string{"guard"}, RoomID: "hall", Read: []string{"gate"}, Inactive: true}},
		Flags:      map[string]any{"door_open": true, "steps": 3},
		Turn:       7,
		CommandLog: []string{"go north", "take key"},
	}
	state.Normalize(d)
	return d
}

func TestRoundTrip(t *testing.T) {
	session := uuid.New()
	data, err := Encode(New(testDisk(), session))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if s.SessionID != session {
		t.Errorf("session = %s, want %s", s.SessionID, session)
	}
	if s.Game != "Test Game" || s.Turn != 7 {
		t.Errorf("metadata = %q turn %d", s.Game, s.Turn)
	}
	d := s.Disk
	if d.RoomID != "garden" {
		t.Errorf("RoomID = %q", d.RoomID)
	}
	if !state.HasItem(d, "key") || d.Inventory[0].OnUse != "key.onUse" {
		t.Errorf("inventory = %+v", d.Inventory)
	}
	if d.Flags["steps"] != float64(3) || d.Flags["door_open"] != true {
		t.Errorf("flags = %#v", d.Flags)
	}
	garden, _ := state.GetRoom(d, "garden")
	if v, ok := garden.Flags["coinTaken"].(bool); !ok || v {
		t.Errorf("room flag = %#v", garden.Flags["coinTaken"])
	}
	if garden.Visits != 2 {
		t.Errorf("visits = %d", garden.Visits)
	}
	hall, _ := state.GetRoom(d, "hall")
	if hall.Exits[0].Block != "Locked." {
		t.Errorf("exit = %+v", hall.Exits[0])
	}
	c := state.CharacterByID(d, "guard")
	if c == nil || !c.Inactive || len(c.Read) != 1 || c.Read[0] != "gate" {
		t.Errorf("character = %+v", c)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"garbage", "{not json", "decoding snapshot"},
		{"wrong version", `{"version": 99, "disk": {}}`, "unsupported snapshot version"},
		{"missing disk", `{"version": 1}`, "no disk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Decode error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDecode_NormalizesNilCollections(t *testing.T) {
	s, err := Decode([]byte(`{"version": 1, "disk": {"roomId": "hall", "rooms": [{"id": "hall"}]}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Disk.Flags == nil || s.Disk.Inventory == nil || s.Disk.Rooms[0].Flags == nil {
		t.Error("expected non-nil collections after decode")
	}
}

func TestFailedError(t *testing.T) {
	err := Fail("save", "slot1", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("FailedError should unwrap")
	}
	if err.Error() != `save failed (slot "slot1"): permission denied` {
		t.Errorf("message = %q", err.Error())
	}
	if Fail("save", "x", nil) != nil {
		t.Error("Fail(nil) should be nil")
	}
}

func TestCheckSlot(t *testing.T) {
	for _, ok := range []string{"auto", "slot-1", "My_Save"} {
		if err := CheckSlot(ok); err != nil {
			t.Errorf("CheckSlot(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "../etc", "a b", "x/y", strings.Repeat("a", 65)} {
		if err := CheckSlot(bad); err == nil {
			t.Errorf("CheckSlot(%q) accepted", bad)
		}
	}
}

func TestCompatible(t *testing.T) {
	s := New(testDisk(), uuid.New())
	if err := Compatible(s, types.GameDef{Title: "Test Game"}); err != nil {
		t.Errorf("Compatible: %v", err)
	}
	if err := Compatible(s, types.GameDef{Title: "Other"}); err == nil {
		t.Error("expected mismatch error")
	}
}
