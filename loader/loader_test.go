package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/engine/state"
)

func TestLoad_LanternDisk(t *testing.T) {
	d, reg, err := Load("testdata/lantern")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reg.Close()

	if d.Game.Title != "Lantern Test" || d.Game.Author != "Tester" || d.Game.Version != "0.1" {
		t.Errorf("Game = %+v", d.Game)
	}
	if d.RoomID != "cellar" {
		t.Errorf("RoomID = %q, want cellar", d.RoomID)
	}
	if d.OnLoad != "game.onLoad" {
		t.Errorf("OnLoad = %q", d.OnLoad)
	}
	if len(d.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(d.Rooms))
	}

	cellar, _ := state.GetRoom(d, "cellar")
	if len(cellar.Items) != 2 || cellar.Items[0].ID != "rope" || cellar.Items[1].ID != "barrel" {
		t.Fatalf("cellar items = %+v", cellar.Items)
	}
	if cellar.Items[1].OnTake != "item:barrel.onTake" {
		t.Errorf("barrel OnTake = %q", cellar.Items[1].OnTake)
	}
	if cellar.Exits[0].Block == "" || cellar.Exits[0].ID != "kitchen" {
		t.Errorf("cellar exit = %+v", cellar.Exits[0])
	}
	if v, ok := cellar.Flags["searched"]; !ok || v != false {
		t.Errorf("cellar flags = %v", cellar.Flags)
	}

	kitchen, _ := state.GetRoom(d, "kitchen")
	if kitchen.OnEnter != "greet" {
		t.Errorf("kitchen OnEnter = %q, want greet", kitchen.OnEnter)
	}
	if kitchen.Exits[1].External != "https://example.com/end" {
		t.Errorf("kitchen out exit = %+v", kitchen.Exits[1])
	}

	if len(d.Inventory) != 1 || d.Inventory[0].OnUse != "item:matches.onUse" {
		t.Errorf("inventory = %+v", d.Inventory)
	}
	if _, ok := d.Templates["bread"]; !ok {
		t.Error("template bread missing")
	}

	cook := state.CharacterByID(d, "cook")
	if cook == nil || len(cook.Topics) != 2 {
		t.Fatalf("cook = %+v", cook)
	}
	if cook.Topics[0].OnSelected != "character:cook/topic:soup.onSelected" {
		t.Errorf("soup OnSelected = %q", cook.Topics[0].OnSelected)
	}
	if got := d.Listeners["flag_changed"]; len(got) != 1 || got[0] != "on:flag_changed#1" {
		t.Errorf("listeners = %v", d.Listeners)
	}

	for _, name := range []string{
		"game.onLoad", "item:matches.onUse", "item:barrel.onTake", "greet",
		"character:cook/topic:soup.onSelected", "on:flag_changed#1",
	} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("handler %q not registered (have %v)", name, reg.Names())
		}
	}
}

func TestFactory_Playthrough(t *testing.T) {
	e, err := engine.LoadDisk(Factory("testdata/lantern"))
	if err != nil {
		t.Fatalf("LoadDisk: %v", err)
	}
	t.Cleanup(e.Close)
	if !strings.Contains(strings.Join(e.Opening.Output, "\n"), "It is dark.") {
		t.Errorf("opening = %v", e.Opening.Output)
	}
	if !state.FlagIsSet(e.Disk, "loaded") {
		t.Error("onLoad did not run")
	}

	play := func(input, want string) {
		t.Helper()
		res, err := e.Step(input)
		if err != nil {
			t.Fatalf("Step(%q): %v", input, err)
		}
		out := strings.Join(res.Output, "\n")
		if !strings.Contains(out, want) {
			t.Errorf("Step(%q) = %q, want it to contain %q", input, out, want)
		}
	}

	play("up", "too dark")
	play("take barrel", "Too heavy.")
	if state.HasItem(e.Disk, "barrel") {
		t.Error("barrel veto ignored")
	}
	play("take rope", "You take the rope.")
	play("use matches", "The lantern flares.")
	play("up", "The cook looks up.")
	play("use matches", "Nothing to light here.")
	play("talk to cook", "1. Soup")
	play("1", "You feel hungry.")
	if !state.HasItem(e.Disk, "bread") {
		t.Error("soup topic should have spawned bread")
	}
	play("2", "Family secret.")
	play("out", "beyond the edge")
	if !e.Disk.Ended || e.Disk.Terminus != "https://example.com/end" {
		t.Errorf("Ended = %v, Terminus = %q", e.Disk.Ended, e.Disk.Terminus)
	}
}

// A snapshot restored into a freshly loaded disk resolves the same handler
// names, so inline Lua hooks keep working after a load.
func TestFactory_RestoreIntoFreshDisk(t *testing.T) {
	e, err := engine.LoadDisk(Factory("testdata/lantern"))
	if err != nil {
		t.Fatalf("LoadDisk: %v", err)
	}
	if _, err := e.Step("use matches"); err != nil {
		t.Fatal(err)
	}
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := engine.LoadDisk(Factory("testdata/lantern"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	res, err := fresh.Step("up")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Disk.RoomID != "kitchen" {
		t.Errorf("room = %q, want kitchen (output %v)", fresh.Disk.RoomID, res.Output)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, _, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	assertContains(t, ve.Errors, `unknown item "ghost"`)
	assertContains(t, ve.Errors, "undefined room")
	assertContains(t, ve.Errors, `"missing_handler"`)
	assertContains(t, ve.Errors, `character "owl" declared twice`)
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, _, err := Load("testdata/bad_lua")
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
	if !strings.Contains(err.Error(), "executing game.lua") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_NoGameDef_Fails(t *testing.T) {
	_, _, err := Load("testdata/no_game")
	if err == nil {
		t.Fatal("expected error for missing Game{} definition")
	}
	if !strings.Contains(err.Error(), "no Game{} definition") {
		t.Errorf("error = %q, expected 'no Game{} definition'", err.Error())
	}
}

func TestLoad_EmptyDir_Fails(t *testing.T) {
	_, _, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	dir := t.TempDir()
	src := `Game { title = "x", start = "a" }
os.execute("echo pwned")`
	if err := os.WriteFile(filepath.Join(dir, "game.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected sandbox to block os.execute")
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"rooms.lua", "game.lua", "items.lua", "npcs.lua"})
	if files[0] != "game.lua" {
		t.Errorf("first file = %q, want game.lua", files[0])
	}
	if files[1] != "items.lua" {
		t.Errorf("second file = %q, want items.lua", files[1])
	}
}

func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
