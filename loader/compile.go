package loader

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/script"
	"github.com/nathoo/gamedisk/types"
)

// compiler turns collected tables into a disk. Reference problems that do
// not stop compilation are recorded for validate.
type compiler struct {
	rt      *script.Runtime
	reg     *hooks.Registry
	missing []string // unresolved item template references
}

func newCompiler(rt *script.Runtime) *compiler {
	return &compiler{rt: rt, reg: hooks.NewRegistry()}
}

// compile converts all collected Lua data into a disk. Handlers are
// registered in c.reg as hooks are compiled.
func (c *compiler) compile(coll *collector) (*types.Disk, error) {
	rt := c.rt

	if coll.game == nil {
		return nil, errors.New("no Game{} definition found")
	}

	for _, h := range coll.handlers {
		if _, dup := c.reg.Lookup(h.name); dup {
			return nil, fmt.Errorf("handler %q declared twice", h.name)
		}
		c.reg.Register(h.name, rt.Handler(h.fn))
	}

	d := state.NewDisk(compileGame(coll.game))
	var err error
	if d.OnLoad, err = c.hook("game")(hooks.OnLoad, coll.game.RawGetString(hooks.OnLoad)); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	// Templates first so rooms and the inventory can place copies of them.
	for _, raw := range coll.items {
		if _, dup := d.Templates[raw.id]; dup {
			return nil, fmt.Errorf("item %q declared twice", raw.id)
		}
		it, err := script.DecodeItem(raw.table, raw.id, c.hook("item:"+raw.id))
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.id, err)
		}
		d.Templates[raw.id] = it
	}

	for _, raw := range coll.rooms {
		room, err := c.compileRoom(d, raw)
		if err != nil {
			return nil, fmt.Errorf("compiling room %s: %w", raw.id, err)
		}
		d.Rooms = append(d.Rooms, room)
	}

	if inv := script.Table(coll.game, "inventory"); inv != nil {
		items, err := c.compileItems(d, inv, "inventory")
		if err != nil {
			return nil, fmt.Errorf("compiling inventory: %w", err)
		}
		d.Inventory = items
	}

	for _, raw := range coll.characters {
		ch, err := script.DecodeCharacter(raw.table, raw.id, func(topic string) script.HookFunc {
			return c.hook("character:" + raw.id + "/topic:" + topic)
		})
		if err != nil {
			return nil, fmt.Errorf("compiling character %s: %w", raw.id, err)
		}
		d.Characters = append(d.Characters, ch)
	}

	if len(coll.listeners) > 0 {
		d.Listeners = map[string][]string{}
	}
	for i, l := range coll.listeners {
		name, err := c.hook(fmt.Sprintf("on:%s#%d", l.event, i+1))(hooks.OnEvent, l.value)
		if err != nil {
			return nil, fmt.Errorf("listener for %s: %w", l.event, err)
		}
		d.Listeners[l.event] = append(d.Listeners[l.event], name)
	}

	state.Normalize(d)
	d.CommandLog = []string{}
	return d, nil
}

// hook returns a HookFunc that registers inline functions as
// "<owner>.<hook>" and passes handler names through.
func (c *compiler) hook(owner string) script.HookFunc {
	return func(hook string, v lua.LValue) (string, error) {
		fn, ok := v.(*lua.LFunction)
		if !ok {
			return script.NamesOnly(hook, v)
		}
		name := owner + "." + hook
		c.reg.Register(name, c.rt.Handler(fn))
		return name, nil
	}
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   script.Str(tbl, "title"),
		Author:  script.Str(tbl, "author"),
		Version: script.Str(tbl, "version"),
		Start:   script.Str(tbl, "start"),
		Intro:   script.Str(tbl, "intro"),
	}
}

func (c *compiler) compileRoom(d *types.Disk, raw rawDef) (*types.Room, error) {
	tbl := raw.table
	room := &types.Room{
		ID:    raw.id,
		Name:  script.Str(tbl, "name"),
		Desc:  script.Str(tbl, "desc"),
		Exits: []*types.Exit{},
		Items: []*types.Item{},
		Flags: map[string]any{},
	}
	if room.Name == "" {
		room.Name = raw.id
	}

	var err error
	owner := c.hook("room:" + raw.id)
	if room.OnEnter, err = owner(hooks.OnEnter, tbl.RawGetString(hooks.OnEnter)); err != nil {
		return nil, err
	}
	if room.OnLook, err = owner(hooks.OnLook, tbl.RawGetString(hooks.OnLook)); err != nil {
		return nil, err
	}

	if exits := script.Table(tbl, "exits"); exits != nil {
		if room.Exits, err = script.DecodeExits(exits); err != nil {
			return nil, err
		}
	}
	if items := script.Table(tbl, "items"); items != nil {
		if room.Items, err = c.compileItems(d, items, "room "+raw.id); err != nil {
			return nil, err
		}
	}
	if flags, ok := script.ToGo(tbl.RawGetString("flags")).(map[string]any); ok {
		room.Flags = flags
	}
	return room, nil
}

// compileItems reads an item list. Strings place a copy of the Item template
// with that id; tables declare an item inline.
func (c *compiler) compileItems(d *types.Disk, tbl *lua.LTable, where string) ([]*types.Item, error) {
	items := []*types.Item{}
	for i := 1; i <= tbl.MaxN(); i++ {
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LString:
			tpl, ok := d.Templates[string(v)]
			if !ok {
				c.missing = append(c.missing, fmt.Sprintf("%s places unknown item %q", where, string(v)))
				continue
			}
			it := *tpl
			it.Name = append([]string(nil), tpl.Name...)
			items = append(items, &it)
		case *lua.LTable:
			id := script.Str(v, "id")
			if id == "" {
				if names := script.Strings(v, "name"); len(names) > 0 {
					id = state.Slug(names[0])
				}
			}
			it, err := script.DecodeItem(v, id, c.hook("item:"+id))
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, it)
		default:
			return nil, fmt.Errorf("item %d: expected item id or table, got %s", i, v.Type())
		}
	}
	return items, nil
}
