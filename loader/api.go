package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the disk constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "...", onLoad = function(ctx) ... end }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Room "id" { ... }, Item "id" { ... } and Character "id" { ... } are
	// curried: the first call takes the id and returns a function taking the
	// table.
	L.SetGlobal("Room", curried(L, &coll.rooms))
	L.SetGlobal("Item", curried(L, &coll.items))
	L.SetGlobal("Character", curried(L, &coll.characters))

	// Handler "name" (function(ctx, t) ... end) declares a shared handler
	// that hooks reference by name.
	L.SetGlobal("Handler", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.handlers = append(coll.handlers, rawHandler{name: name, fn: L.CheckFunction(1)})
			return 0
		}))
		return 1
	}))

	// On("event_type", function(ctx, t) ... end) or On("event_type", "name")
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		v := L.Get(2)
		switch v.(type) {
		case *lua.LFunction, lua.LString:
		default:
			L.ArgError(2, "function or handler name expected")
		}
		coll.listeners = append(coll.listeners, rawListener{event: event, value: v})
		return 0
	}))
}

func curried(L *lua.LState, into *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			*into = append(*into, rawDef{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	})
}
