package dialogue

import (
	"testing"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

func archivist() *types.Character {
	d := &types.Disk{
		Characters: []*types.Character{{
			Name:   []string{"Archivist"},
			RoomID: "library",
			Topics: []*types.Topic{
				{ID: "tower", Option: "Ask about the tower", Line: "It is older than the town."},
				{ID: "gallery", Option: "Ask about the gallery", Line: "Mirrors lie.", Prereqs: []string{"tower"}},
				{ID: "token", Option: "Ask for the earth token", Line: "Take it.", RemoveOnRead: true},
				{Option: "Say hello", Line: "Hello."},
			},
		}},
	}
	state.Normalize(d)
	return d.Characters[0]
}

func ids(topics []*types.Topic) []string { return IDs(topics) }

func TestEligible_Prereqs(t *testing.T) {
	c := archivist()
	for _, id := range ids(Eligible(c)) {
		if id == "gallery" {
			t.Fatal("gallery offered before tower was read")
		}
	}
	MarkRead(c, "tower")
	found := false
	for _, id := range ids(Eligible(c)) {
		if id == "gallery" {
			found = true
		}
	}
	if !found {
		t.Error("gallery not offered after tower was read")
	}
}

func TestEligible_RemoveOnRead(t *testing.T) {
	c := archivist()
	if _, ok := Find(c, "token"); !ok {
		t.Fatal("token topic not offered")
	}
	MarkRead(c, "token")
	if _, ok := Find(c, "token"); ok {
		t.Error("consumed topic still selectable")
	}
	for _, id := range ids(Eligible(c)) {
		if id == "token" {
			t.Error("consumed topic still offered")
		}
	}
}

func TestEligible_ReadTopicsStayOffered(t *testing.T) {
	c := archivist()
	MarkRead(c, "say hello")
	if _, ok := Find(c, "say hello"); !ok {
		t.Error("non-consumable topic should remain offered after reading")
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	c := archivist()
	MarkRead(c, "tower")
	MarkRead(c, "tower")
	if len(c.Read) != 1 {
		t.Errorf("Read = %v", c.Read)
	}
}

func TestFind(t *testing.T) {
	c := archivist()
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"1", "tower", true},
		{"3", "say hello", true},
		{"4", "", false},
		{"0", "", false},
		{"TOWER", "tower", true},
		{"ask about the tower", "tower", true},
		{"gallery", "", false},
		{"", "", false},
		{"dragons", "", false},
	}
	for _, tt := range tests {
		got, ok := Find(c, tt.token)
		if ok != tt.ok {
			t.Errorf("Find(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			continue
		}
		if ok && got.ID != tt.want {
			t.Errorf("Find(%q) = %q, want %q", tt.token, got.ID, tt.want)
		}
	}
}

func TestMenu(t *testing.T) {
	c := archivist()
	got := Menu(c)
	want := []string{"1. Ask about the tower", "2. Ask for the earth token", "3. Say hello"}
	if len(got) != len(want) {
		t.Fatalf("Menu = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Menu[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsLeave(t *testing.T) {
	for _, in := range []string{"leave", "BYE", " nevermind "} {
		if !IsLeave(in) {
			t.Errorf("IsLeave(%q) = false", in)
		}
	}
	if IsLeave("look") {
		t.Error("IsLeave(look) = true")
	}
}
