// Package script runs disk hooks written in Lua. A Runtime owns one sandboxed
// Lua state for the lifetime of a disk. Lua functions are wrapped as
// hooks.Handler values; when invoked they receive a capability table (ctx)
// bound to the engine's hooks.Context and a table describing the target.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gamedisk/engine/hooks"
)

// DefaultTimeout bounds a single top-level handler call, including any Lua
// handlers it triggers.
const DefaultTimeout = 2 * time.Second

// Runtime is a sandboxed Lua state plus the ctx table handed to handlers.
// It is not safe for concurrent use; the engine runs one command at a time.
type Runtime struct {
	L     *lua.LState
	api   *lua.LTable
	stack []*frame

	// Timeout aborts a handler that runs longer than this. Zero disables
	// the limit.
	Timeout time.Duration
}

// frame is one active handler invocation. Handlers nest when a hook moves
// the player and the destination's onEnter is also written in Lua.
type frame struct {
	ctx hooks.Context
	t   hooks.Target
	err error
}

// New creates a runtime with only the safe standard libraries loaded.
func New() *Runtime {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)

	r := &Runtime{L: L, Timeout: DefaultTimeout}
	r.api = r.newAPI()
	L.SetGlobal("print", L.NewFunction(r.luaPrint))
	return r
}

// Close releases the Lua state. Handlers created by this runtime must not be
// invoked afterwards.
func (r *Runtime) Close() {
	r.L.Close()
}

// DoFile executes a Lua source file in the sandbox.
func (r *Runtime) DoFile(path string) error {
	return r.L.DoFile(path)
}

// DoString executes a Lua chunk in the sandbox.
func (r *Runtime) DoString(src string) error {
	return r.L.DoString(src)
}

// Handler wraps a Lua function as a hook handler. The function is called as
// fn(ctx, target). Returning false vetoes the engine's default action.
func (r *Runtime) Handler(fn *lua.LFunction) hooks.Handler {
	return func(ctx hooks.Context, t hooks.Target) error {
		return r.call(fn, ctx, t)
	}
}

func (r *Runtime) call(fn *lua.LFunction, ctx hooks.Context, t hooks.Target) error {
	f := &frame{ctx: ctx, t: t}
	r.stack = append(r.stack, f)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	// Nested handlers run under the outermost call's deadline.
	var deadline context.Context
	if len(r.stack) == 1 && r.Timeout > 0 {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), r.Timeout)
		r.L.SetContext(deadline)
		defer func() {
			r.L.RemoveContext()
			cancel()
		}()
	}

	err := r.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, r.api, r.target(t))
	if deadline != nil && deadline.Err() != nil {
		return fmt.Errorf("lua: handler ran longer than %s: %w", r.Timeout, deadline.Err())
	}
	if f.err != nil {
		// A ctx call failed; report the Go error rather than its Lua rendering.
		return f.err
	}
	if err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)
	if ret == lua.LFalse {
		return hooks.ErrCancel
	}
	return nil
}

func (r *Runtime) top() *frame {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// target builds the table passed as a handler's second argument.
func (r *Runtime) target(t hooks.Target) *lua.LTable {
	L := r.L
	tbl := L.NewTable()
	tbl.RawSetString("hook", lua.LString(t.Hook))
	if t.Room != nil {
		tbl.RawSetString("room", lua.LString(t.Room.ID))
	}
	if t.Item != nil {
		tbl.RawSetString("item", lua.LString(t.Item.ID))
	}
	if t.Character != nil {
		tbl.RawSetString("character", lua.LString(t.Character.ID))
	}
	if t.Topic != nil {
		tbl.RawSetString("topic", lua.LString(t.Topic.ID))
	}
	if t.Event != nil {
		ev := L.NewTable()
		ev.RawSetString("type", lua.LString(t.Event.Type))
		data := L.NewTable()
		for k, v := range t.Event.Data {
			data.RawSetString(k, ToLua(L, v))
		}
		ev.RawSetString("data", data)
		tbl.RawSetString("event", ev)
	}
	return tbl
}

// luaPrint routes print() to the transcript while a handler runs. At load
// time there is no transcript and output is dropped.
func (r *Runtime) luaPrint(L *lua.LState) int {
	f := r.top()
	if f == nil {
		return 0
	}
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	f.ctx.Println(strings.Join(parts, "\t"))
	return 0
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the file system or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "module", "require",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
