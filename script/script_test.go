package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

const hallLua = `
function use_lever(ctx, t)
  ctx.println("The lever clicks. (", t.hook, " ", t.item, " in ", t.room, ")")
  ctx.unblock("hall", "north")
  ctx.set_flag("lever", true)
  ctx.set_room_flag("hall", "pulls", (ctx.room_flag("hall", "pulls") or 0) + 1)
end

function take_vase(ctx, t)
  print("It is glued to the plinth.")
  return false
end

function look_crate(ctx, t)
  if not ctx.flag_is_set("crateOpened") then
    ctx.set_flag("crateOpened", true)
    local id = ctx.spawn("apple", "hall")
    ctx.println("An " .. id .. " rolls out.")
  else
    ctx.println("The crate is empty.")
  end
end

function use_bell(ctx, t)
  ctx.reveal("nowhere", "ghost")
end

function on_flag(ctx, t)
  if t.event.data.flag == "lever" then
    ctx.println("Somewhere, gears turn.")
  end
end

function enter_vault(ctx, t)
  ctx.println("Visits here: " .. ctx.visits())
  ctx.move_item("coin", ctx.INVENTORY, "vault")
end
`

func newHall(t *testing.T) *engine.Engine {
	t.Helper()
	r := New()
	t.Cleanup(r.Close)
	if err := r.DoString(hallLua); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	reg := hooks.NewRegistry()
	for name, global := range map[string]string{
		"lever.onUse":   "use_lever",
		"vase.onTake":   "take_vase",
		"crate.onLook":  "look_crate",
		"bell.onUse":    "use_bell",
		"flags.onEvent": "on_flag",
		"vault.onEnter": "enter_vault",
	} {
		fn, ok := r.L.GetGlobal(global).(*lua.LFunction)
		if !ok {
			t.Fatalf("global %s is not a function", global)
		}
		reg.Register(name, r.Handler(fn))
	}

	factory := func() (*types.Disk, *hooks.Registry, error) {
		d := state.NewDisk(types.GameDef{Title: "Hall", Start: "hall"})
		d.Rooms = []*types.Room{
			{
				ID: "hall", Name: "Hall",
				Exits: []*types.Exit{{Dir: []string{"north", "n"}, ID: "vault", Block: "The portcullis is down."}},
				Items: []*types.Item{
					{ID: "lever", Name: []string{"lever"}, OnUse: "lever.onUse"},
					{ID: "vase", Name: []string{"vase"}, IsTakeable: true, OnTake: "vase.onTake"},
					{ID: "crate", Name: []string{"crate"}, OnLook: "crate.onLook"},
					{ID: "bell", Name: []string{"bell"}, OnUse: "bell.onUse"},
				},
			},
			{
				ID: "vault", Name: "Vault", OnEnter: "vault.onEnter",
				Exits: []*types.Exit{{Dir: []string{"south", "s"}, ID: "hall"}},
				Items: []*types.Item{{ID: "coin", Name: []string{"coin"}, IsHidden: true}},
			},
		}
		d.Templates["apple"] = &types.Item{ID: "apple", Name: []string{"apple"}, IsTakeable: true}
		d.Listeners = map[string][]string{"flag_changed": {"flags.onEvent"}}
		return d, reg, nil
	}

	e, err := engine.LoadDisk(factory)
	if err != nil {
		t.Fatalf("LoadDisk: %v", err)
	}
	return e
}

func step(t *testing.T, e *engine.Engine, input string) string {
	t.Helper()
	res, err := e.Step(input)
	if err != nil {
		t.Fatalf("Step(%q): %v", input, err)
	}
	return strings.Join(res.Output, "\n")
}

func TestHandler_MutatesThroughContext(t *testing.T) {
	e := newHall(t)

	if out := step(t, e, "north"); !strings.Contains(out, "portcullis") {
		t.Fatalf("expected blocked exit, got %q", out)
	}

	out := step(t, e, "use lever")
	if !strings.Contains(out, "The lever clicks. (onUse lever in hall)") {
		t.Errorf("handler output = %q", out)
	}
	if !strings.Contains(out, "Somewhere, gears turn.") {
		t.Errorf("listener did not run: %q", out)
	}
	if state.GetFlag(e.Disk, "lever") != true {
		t.Errorf("lever flag = %v, want true", state.GetFlag(e.Disk, "lever"))
	}
	hall, _ := state.GetRoom(e.Disk, "hall")
	if got := state.RoomFlag(hall, "pulls"); got != float64(1) {
		t.Errorf("pulls = %v, want 1", got)
	}

	step(t, e, "use lever")
	if got := state.RoomFlag(hall, "pulls"); got != float64(2) {
		t.Errorf("pulls = %v, want 2", got)
	}

	out = step(t, e, "n")
	if e.Disk.RoomID != "vault" {
		t.Fatalf("room = %q, want vault (output %q)", e.Disk.RoomID, out)
	}
	if !strings.Contains(out, "Visits here: 1") {
		t.Errorf("onEnter output = %q", out)
	}
	if !state.HasItem(e.Disk, "coin") {
		t.Error("onEnter should have moved the coin into the inventory")
	}
}

func TestHandler_ReturnFalseVetoesTake(t *testing.T) {
	e := newHall(t)
	out := step(t, e, "take vase")
	if !strings.Contains(out, "glued") {
		t.Errorf("output = %q", out)
	}
	if state.HasItem(e.Disk, "vase") {
		t.Error("vase should not be in the inventory after a veto")
	}
}

func TestHandler_SpawnOnce(t *testing.T) {
	e := newHall(t)
	out := step(t, e, "look crate")
	if !strings.Contains(out, "An apple rolls out.") {
		t.Errorf("first look = %q", out)
	}
	out = step(t, e, "look crate")
	if !strings.Contains(out, "The crate is empty.") {
		t.Errorf("second look = %q", out)
	}
	step(t, e, "take apple")
	if !state.HasItem(e.Disk, "apple") {
		t.Error("spawned apple should be takeable")
	}
}

func TestHandler_ContextErrorIsReturned(t *testing.T) {
	e := newHall(t)
	_, err := e.Step("use bell")
	if err == nil {
		t.Fatal("expected error from reveal in unknown room")
	}
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("error %v should wrap state.ErrNotFound", err)
	}
}

func TestHandler_LuaErrorIsReturned(t *testing.T) {
	r := New()
	defer r.Close()
	if err := r.DoString(`function broken(ctx, t) error("boom") end`); err != nil {
		t.Fatal(err)
	}
	h := r.Handler(r.L.GetGlobal("broken").(*lua.LFunction))
	err := h(nil, hooks.Target{Hook: hooks.OnUse})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want lua error mentioning boom", err)
	}
}

func TestHandler_Timeout(t *testing.T) {
	r := New()
	defer r.Close()
	r.Timeout = 50 * time.Millisecond
	if err := r.DoString(`
function spin(ctx, t) while true do end end
function quick(ctx, t) return true end
`); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- r.Handler(r.L.GetGlobal("spin").(*lua.LFunction))(nil, hooks.Target{Hook: hooks.OnUse})
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want deadline exceeded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not stopped")
	}

	// The runtime stays usable afterwards.
	if err := r.Handler(r.L.GetGlobal("quick").(*lua.LFunction))(nil, hooks.Target{Hook: hooks.OnUse}); err != nil {
		t.Errorf("quick after timeout: %v", err)
	}
}

func TestSandbox(t *testing.T) {
	r := New()
	defer r.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		if r.L.GetGlobal(name) != lua.LNil {
			t.Errorf("%s should be removed", name)
		}
	}
	if err := r.DoString(`math.randomseed(1)`); err == nil {
		t.Error("math.randomseed should be unavailable")
	}
	if err := r.DoString(`os.exit(1)`); err == nil {
		t.Error("os library should not be loaded")
	}
	if err := r.DoString(`local s = string.format("%d", math.floor(2.5)); assert(s == "2")`); err != nil {
		t.Errorf("safe libs should work: %v", err)
	}
}

func TestContextOutsideHook(t *testing.T) {
	r := New()
	defer r.Close()
	if err := r.DoString(`function keep(ctx, t) saved = ctx end`); err != nil {
		t.Fatal(err)
	}
	h := r.Handler(r.L.GetGlobal("keep").(*lua.LFunction))
	if err := h(nil, hooks.Target{Hook: hooks.OnLoad}); err != nil {
		t.Fatalf("keep: %v", err)
	}

	err := r.DoString(`saved.println("too late")`)
	if err == nil || !strings.Contains(err.Error(), errNoHook.Error()) {
		t.Errorf("err = %v, want %q", err, errNoHook)
	}
	// print at load time is dropped.
	if err := r.DoString(`print("loading")`); err != nil {
		t.Errorf("print at load time: %v", err)
	}
}

func TestValueConversion(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	cases := []any{nil, true, "x", float64(3)}
	for _, v := range cases {
		if got := ToGo(ToLua(L, v)); got != v {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
	if got := ToGo(ToLua(L, 7)); got != float64(7) {
		t.Errorf("int should become float64, got %T", got)
	}
	list, ok := ToGo(ToLua(L, []string{"a", "b"})).([]any)
	if !ok || len(list) != 2 || list[1] != "b" {
		t.Errorf("list = %v", list)
	}
	m, ok := ToGo(ToLua(L, map[string]any{"k": 1.5})).(map[string]any)
	if !ok || m["k"] != 1.5 {
		t.Errorf("map = %v", m)
	}
}

func TestDecode(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(`
exit_ok = { dir = {"north", "n"}, to = "library", block = "Locked." }
exit_bad = { dir = "up" }
item = { name = {"gold coin", "coin"}, takeable = true, onUse = "coin.onUse" }
item_fn = { name = "lamp", onUse = function() end }
npc = { name = "Archivist", room = "library", topics = {
  { option = "The Tower", line = "It is old." },
  { id = "gallery", option = "Gallery", line = "Mirrors.", prereqs = "the tower", removeOnRead = true },
}}
patch = { block = false, to = "hall" }
`); err != nil {
		t.Fatal(err)
	}
	get := func(name string) *lua.LTable { return L.GetGlobal(name).(*lua.LTable) }

	ex, err := DecodeExit(get("exit_ok"))
	if err != nil || ex.ID != "library" || ex.Block != "Locked." || len(ex.Dir) != 2 {
		t.Errorf("DecodeExit = %+v, %v", ex, err)
	}
	if _, err := DecodeExit(get("exit_bad")); err == nil {
		t.Error("exit without destination should fail")
	}

	it, err := DecodeItem(get("item"), "", NamesOnly)
	if err != nil || !it.IsTakeable || it.OnUse != "coin.onUse" || it.Name[1] != "coin" {
		t.Errorf("DecodeItem = %+v, %v", it, err)
	}
	if _, err := DecodeItem(get("item_fn"), "lamp", NamesOnly); err == nil {
		t.Error("inline function should be rejected by NamesOnly")
	}

	c, err := DecodeCharacter(get("npc"), "archivist", func(string) HookFunc { return NamesOnly })
	if err != nil {
		t.Fatalf("DecodeCharacter: %v", err)
	}
	if c.ID != "archivist" || c.RoomID != "library" || len(c.Topics) != 2 {
		t.Errorf("character = %+v", c)
	}
	if c.Topics[0].ID != "the tower" {
		t.Errorf("default topic id = %q, want folded option", c.Topics[0].ID)
	}
	if !c.Topics[1].RemoveOnRead || c.Topics[1].Prereqs[0] != "the tower" {
		t.Errorf("topic 2 = %+v", c.Topics[1])
	}

	p := DecodePatch(get("patch"))
	if p.Block == nil || *p.Block != "" || p.ID == nil || *p.ID != "hall" || p.External != nil {
		t.Errorf("patch = %+v", p)
	}
}
