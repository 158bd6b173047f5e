package script

import (
	"errors"
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// HookFunc turns the value of a hook field into a handler name. Disk
// definitions register inline functions; at play time only names are
// accepted.
type HookFunc func(hook string, v lua.LValue) (string, error)

// NamesOnly accepts handler names and rejects inline functions. Content
// created while playing must reference handlers that exist at load time so
// that a restored save resolves the same names.
func NamesOnly(hook string, v lua.LValue) (string, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return string(val), nil
	case *lua.LFunction:
		return "", fmt.Errorf("%s: inline functions are only allowed in disk definitions", hook)
	default:
		return "", fmt.Errorf("%s: expected handler name, got %s", hook, v.Type())
	}
}

// Str returns a string field of tbl, or "".
func Str(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// Bool returns a boolean field of tbl, or def when absent.
func Bool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// Table returns a table field of tbl, or nil.
func Table(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// Strings reads a field that is either a single string or a list of strings.
func Strings(tbl *lua.LTable, key string) []string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// DecodeItem builds an item from a table. id is used when the table has none.
func DecodeItem(tbl *lua.LTable, id string, hook HookFunc) (*types.Item, error) {
	it := &types.Item{
		ID:         Str(tbl, "id"),
		Name:       Strings(tbl, "name"),
		Desc:       Str(tbl, "desc"),
		IsTakeable: Bool(tbl, "takeable", false),
		IsHidden:   Bool(tbl, "hidden", false),
	}
	if it.ID == "" {
		it.ID = id
	}
	var err error
	if it.OnLook, err = hook("onLook", tbl.RawGetString("onLook")); err != nil {
		return nil, err
	}
	if it.OnUse, err = hook("onUse", tbl.RawGetString("onUse")); err != nil {
		return nil, err
	}
	if it.OnTake, err = hook("onTake", tbl.RawGetString("onTake")); err != nil {
		return nil, err
	}
	if it.ID == "" && len(it.Name) == 0 {
		return nil, errors.New("item needs an id or a name")
	}
	return it, nil
}

// DecodeExit builds an exit from a table:
//
//	{ dir = {"north", "n"}, to = "library", block = "The door is locked." }
//	{ dir = "up", external = "https://example.com/" }
func DecodeExit(tbl *lua.LTable) (*types.Exit, error) {
	ex := &types.Exit{
		Dir:      Strings(tbl, "dir"),
		ID:       Str(tbl, "to"),
		External: Str(tbl, "external"),
		Block:    Str(tbl, "block"),
	}
	if len(ex.Dir) == 0 {
		return nil, errors.New("exit needs a dir")
	}
	if ex.ID == "" && ex.External == "" {
		return nil, fmt.Errorf("exit %q needs a destination (to or external)", ex.Dir[0])
	}
	return ex, nil
}

// DecodeExits reads a list of exit tables.
func DecodeExits(tbl *lua.LTable) ([]*types.Exit, error) {
	exits := []*types.Exit{}
	for i := 1; i <= tbl.MaxN(); i++ {
		et, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("exit %d: expected table", i)
		}
		ex, err := DecodeExit(et)
		if err != nil {
			return nil, err
		}
		exits = append(exits, ex)
	}
	return exits, nil
}

// DecodePatch reads an exit patch. Absent keys leave the exit unchanged;
// block = "" or false removes a block.
func DecodePatch(tbl *lua.LTable) state.ExitPatch {
	var p state.ExitPatch
	switch v := tbl.RawGetString("block").(type) {
	case lua.LString:
		s := string(v)
		p.Block = &s
	case lua.LBool:
		if !v {
			empty := ""
			p.Block = &empty
		}
	}
	if v, ok := tbl.RawGetString("to").(lua.LString); ok {
		s := string(v)
		p.ID = &s
	}
	if v, ok := tbl.RawGetString("external").(lua.LString); ok {
		s := string(v)
		p.External = &s
	}
	return p
}

// DecodeCharacter builds a character from a table. hook returns the HookFunc
// used for a topic's onSelected field.
func DecodeCharacter(tbl *lua.LTable, id string, hook func(topic string) HookFunc) (*types.Character, error) {
	c := &types.Character{
		ID:       Str(tbl, "id"),
		Name:     Strings(tbl, "name"),
		RoomID:   Str(tbl, "room"),
		Desc:     Str(tbl, "desc"),
		OnTalk:   Str(tbl, "talk"),
		Inactive: Bool(tbl, "inactive", false),
		Read:     []string{},
	}
	if c.ID == "" {
		c.ID = id
	}
	if c.ID == "" {
		return nil, errors.New("character needs an id")
	}
	if topics := Table(tbl, "topics"); topics != nil {
		for i := 1; i <= topics.MaxN(); i++ {
			tt, ok := topics.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("character %q topic %d: expected table", c.ID, i)
			}
			t := &types.Topic{
				ID:           Str(tt, "id"),
				Option:       Str(tt, "option"),
				Line:         Str(tt, "line"),
				Prereqs:      Strings(tt, "prereqs"),
				RemoveOnRead: Bool(tt, "removeOnRead", false),
			}
			if t.Option == "" {
				return nil, fmt.Errorf("character %q topic %d: option is required", c.ID, i)
			}
			if t.ID == "" {
				t.ID = state.Fold(t.Option)
			}
			name, err := hook(t.ID)("onSelected", tt.RawGetString("onSelected"))
			if err != nil {
				return nil, fmt.Errorf("character %q topic %q: %w", c.ID, t.ID, err)
			}
			t.OnSelected = name
			c.Topics = append(c.Topics, t)
		}
	}
	return c, nil
}

// ToGo converts a Lua value into the Go representation used for flags:
// bool, float64, string, nil, []any or map[string]any.
func ToGo(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, ToGo(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = ToGo(v)
			}
		})
		return m
	default:
		return nil
	}
}

// ToLua converts a Go flag or event value into a Lua value.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case float64:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case []any:
		tbl := L.NewTable()
		for _, e := range val {
			tbl.Append(ToLua(L, e))
		}
		return tbl
	case []string:
		tbl := L.NewTable()
		for _, e := range val {
			tbl.Append(lua.LString(e))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, ToLua(L, val[k]))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(val))
	}
}
