package script

import (
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// errNoHook is raised when ctx is used outside a running handler, for
// example by a disk file at load time.
var errNoHook = errors.New("ctx can only be used inside a hook")

// newAPI builds the ctx table. Every function looks up the innermost active
// handler frame, so one table serves nested invocations.
func (r *Runtime) newAPI() *lua.LTable {
	fns := map[string]lua.LGFunction{
		"println":          r.println,
		"room":             r.room,
		"visits":           r.visits,
		"in_room":          r.inRoom,
		"has_item":         r.hasItem,
		"character":        r.character,
		"flag":             r.flag,
		"flag_is_set":      r.flagIsSet,
		"room_flag":        r.roomFlag,
		"exit":             r.exit,
		"add_item":         r.addItem,
		"remove_item":      r.removeItem,
		"move_item":        r.moveItem,
		"spawn":            r.spawn,
		"reveal":           r.reveal,
		"set_flag":         r.setFlag,
		"set_room_flag":    r.setRoomFlag,
		"mutate_exit":      r.mutateExit,
		"unblock":          r.unblock,
		"block":            r.block,
		"add_exit":         r.addExit,
		"set_exits":        r.setExits,
		"add_character":    r.addCharacter,
		"remove_character": r.removeCharacter,
		"move_character":   r.moveCharacter,
		"go":               r.goDir,
		"end_conversation": r.endConversation,
	}
	tbl := r.L.NewTable()
	r.L.SetFuncs(tbl, fns)
	tbl.RawSetString("INVENTORY", lua.LString(state.Inventory))
	return tbl
}

// active returns the current frame or raises a Lua error.
func (r *Runtime) active(L *lua.LState) *frame {
	f := r.top()
	if f == nil {
		L.RaiseError("%s", errNoHook.Error())
	}
	return f
}

// fail records err on the frame and raises it in Lua. The handler then
// returns err itself, so callers can still match it with errors.Is.
func (r *Runtime) fail(L *lua.LState, f *frame, err error) int {
	f.err = err
	L.RaiseError("%s", err.Error())
	return 0
}

// containerArg accepts "inventory", "room:<id>" or a bare room id.
func containerArg(L *lua.LState, n int) string {
	s := L.CheckString(n)
	if s == state.Inventory || strings.HasPrefix(s, "room:") {
		return s
	}
	return state.RoomContainer(s)
}

func (r *Runtime) println(L *lua.LState) int {
	f := r.active(L)
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	f.ctx.Println(strings.Join(parts, ""))
	return 0
}

func (r *Runtime) room(L *lua.LState) int {
	f := r.active(L)
	if room := f.ctx.CurrentRoom(); room != nil {
		L.Push(lua.LString(room.ID))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (r *Runtime) visits(L *lua.LState) int {
	f := r.active(L)
	room := f.ctx.CurrentRoom()
	if id := L.OptString(1, ""); id != "" {
		var err error
		if room, err = f.ctx.Room(id); err != nil {
			return r.fail(L, f, err)
		}
	}
	if room == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(room.Visits))
	return 1
}

func (r *Runtime) inRoom(L *lua.LState) int {
	f := r.active(L)
	room := f.ctx.CurrentRoom()
	L.Push(lua.LBool(room != nil && room.ID == L.CheckString(1)))
	return 1
}

func (r *Runtime) hasItem(L *lua.LState) int {
	f := r.active(L)
	L.Push(lua.LBool(f.ctx.HasItem(L.CheckString(1))))
	return 1
}

func (r *Runtime) character(L *lua.LState) int {
	f := r.active(L)
	c := f.ctx.Character(L.CheckString(1))
	if c == nil {
		L.Push(lua.LNil)
		return 1
	}
	tbl := L.NewTable()
	tbl.RawSetString("id", lua.LString(c.ID))
	tbl.RawSetString("room", lua.LString(c.RoomID))
	tbl.RawSetString("read", ToLua(L, c.Read))
	L.Push(tbl)
	return 1
}

func (r *Runtime) flag(L *lua.LState) int {
	f := r.active(L)
	L.Push(ToLua(L, f.ctx.Flag(L.CheckString(1))))
	return 1
}

func (r *Runtime) flagIsSet(L *lua.LState) int {
	f := r.active(L)
	L.Push(lua.LBool(f.ctx.FlagIsSet(L.CheckString(1))))
	return 1
}

func (r *Runtime) roomFlag(L *lua.LState) int {
	f := r.active(L)
	v, err := f.ctx.RoomFlag(L.CheckString(1), L.CheckString(2))
	if err != nil {
		return r.fail(L, f, err)
	}
	L.Push(ToLua(L, v))
	return 1
}

func (r *Runtime) exit(L *lua.LState) int {
	f := r.active(L)
	ex, err := f.ctx.Exit(L.CheckString(1), L.CheckString(2))
	if err != nil {
		var nf *state.NotFoundError
		if errors.As(err, &nf) && nf.Kind == "exit" {
			L.Push(lua.LNil)
			return 1
		}
		return r.fail(L, f, err)
	}
	tbl := L.NewTable()
	tbl.RawSetString("dir", ToLua(L, ex.Dir))
	tbl.RawSetString("to", lua.LString(ex.ID))
	tbl.RawSetString("external", lua.LString(ex.External))
	tbl.RawSetString("block", lua.LString(ex.Block))
	L.Push(tbl)
	return 1
}

func (r *Runtime) addItem(L *lua.LState) int {
	f := r.active(L)
	to := containerArg(L, 1)
	it, err := DecodeItem(L.CheckTable(2), "", NamesOnly)
	if err != nil {
		return r.fail(L, f, err)
	}
	if err := f.ctx.AddItem(to, it); err != nil {
		return r.fail(L, f, err)
	}
	L.Push(lua.LString(it.ID))
	return 1
}

func (r *Runtime) removeItem(L *lua.LState) int {
	f := r.active(L)
	from := containerArg(L, 1)
	id := L.CheckString(2)
	removed, err := f.ctx.RemoveItem(from, func(it *types.Item) bool { return it.ID == id })
	if err != nil {
		return r.fail(L, f, err)
	}
	L.Push(lua.LNumber(len(removed)))
	return 1
}

// moveItem relocates an item by id. The item is looked up in the optional
// third argument's container, else the hook's own item, the current room and
// the inventory.
func (r *Runtime) moveItem(L *lua.LState) int {
	f := r.active(L)
	id := L.CheckString(1)
	to := containerArg(L, 2)

	var it *types.Item
	if L.GetTop() >= 3 {
		from := containerArg(L, 3)
		it = r.findIn(f, from, id)
	} else {
		it = r.find(f, id)
	}
	if it == nil {
		return r.fail(L, f, &state.NotFoundError{Kind: "item", ID: id})
	}
	if err := f.ctx.MoveItem(it, to); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) find(f *frame, id string) *types.Item {
	if f.t.Item != nil && f.t.Item.ID == id {
		return f.t.Item
	}
	if room := f.ctx.CurrentRoom(); room != nil {
		if it := itemByID(room.Items, id); it != nil {
			return it
		}
	}
	if it := f.ctx.InventoryItem(id); it != nil && it.ID == id {
		return it
	}
	return nil
}

func (r *Runtime) findIn(f *frame, container, id string) *types.Item {
	if container == state.Inventory {
		if it := f.ctx.InventoryItem(id); it != nil && it.ID == id {
			return it
		}
		return nil
	}
	room, err := f.ctx.Room(strings.TrimPrefix(container, "room:"))
	if err != nil {
		return nil
	}
	return itemByID(room.Items, id)
}

func itemByID(items []*types.Item, id string) *types.Item {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (r *Runtime) spawn(L *lua.LState) int {
	f := r.active(L)
	it, err := f.ctx.Spawn(L.CheckString(1), containerArg(L, 2))
	if err != nil {
		return r.fail(L, f, err)
	}
	L.Push(lua.LString(it.ID))
	return 1
}

func (r *Runtime) reveal(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.Reveal(L.CheckString(1), L.CheckString(2)); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) setFlag(L *lua.LState) int {
	f := r.active(L)
	f.ctx.SetFlag(L.CheckString(1), ToGo(L.Get(2)))
	return 0
}

func (r *Runtime) setRoomFlag(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.SetRoomFlag(L.CheckString(1), L.CheckString(2), ToGo(L.Get(3))); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) mutateExit(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.MutateExit(L.CheckString(1), L.CheckString(2), DecodePatch(L.CheckTable(3))); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) unblock(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.Unblock(L.CheckString(1), L.CheckString(2)); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) block(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.Block(L.CheckString(1), L.CheckString(2), L.CheckString(3)); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) addExit(L *lua.LState) int {
	f := r.active(L)
	ex, err := DecodeExit(L.CheckTable(2))
	if err != nil {
		return r.fail(L, f, err)
	}
	if err := f.ctx.AddExit(L.CheckString(1), ex); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) setExits(L *lua.LState) int {
	f := r.active(L)
	exits, err := DecodeExits(L.CheckTable(2))
	if err != nil {
		return r.fail(L, f, err)
	}
	if err := f.ctx.SetExits(L.CheckString(1), exits); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) addCharacter(L *lua.LState) int {
	f := r.active(L)
	c, err := DecodeCharacter(L.CheckTable(1), "", func(string) HookFunc { return NamesOnly })
	if err != nil {
		return r.fail(L, f, err)
	}
	f.ctx.AddCharacter(c)
	return 0
}

func (r *Runtime) removeCharacter(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.RemoveCharacter(L.CheckString(1)); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) moveCharacter(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.MoveCharacter(L.CheckString(1), L.CheckString(2)); err != nil {
		return r.fail(L, f, err)
	}
	return 0
}

func (r *Runtime) goDir(L *lua.LState) int {
	f := r.active(L)
	if err := f.ctx.GoDir(L.CheckString(1)); err != nil {
		return r.fail(L, f, fmt.Errorf("go %s: %w", L.CheckString(1), err))
	}
	return 0
}

func (r *Runtime) endConversation(L *lua.LState) int {
	f := r.active(L)
	f.ctx.EndConversation()
	return 0
}
