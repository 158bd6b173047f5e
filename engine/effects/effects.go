// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation on the world store. No logic in
// effects beyond parameter checking.
package effects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// Effect types.
const (
	AddItem         = "add_item"
	RemoveItem      = "remove_item"
	MoveItem        = "move_item"
	SpawnItem       = "spawn_item"
	RevealItem      = "reveal_item"
	SetFlag         = "set_flag"
	SetRoomFlag     = "set_room_flag"
	MutateExit      = "mutate_exit"
	AddExit         = "add_exit"
	SetExits        = "set_exits"
	AddCharacter    = "add_character"
	RemoveCharacter = "remove_character"
	MoveCharacter   = "move_character"
	MovePlayer      = "move_player"
)

// Applied is what applying a single effect produced.
type Applied struct {
	Events []types.Event
	Items  []*types.Item // items removed or spawned
}

// Apply applies one effect to the disk. On error the disk is unchanged.
func Apply(d *types.Disk, eff types.Effect) (Applied, error) {
	var out Applied
	p := eff.Params

	switch eff.Type {
	case AddItem:
		to := str(p, "container")
		item, _ := p["item"].(*types.Item)
		if item == nil {
			return out, fmt.Errorf("%s: missing item", eff.Type)
		}
		if err := state.AddItemTo(d, to, item); err != nil {
			return out, err
		}
		out.Events = append(out.Events, itemEvent(to, item))

	case RemoveItem:
		from := str(p, "container")
		match, _ := p["match"].(func(*types.Item) bool)
		if match == nil {
			return out, fmt.Errorf("%s: missing match", eff.Type)
		}
		removed, err := state.RemoveItemFrom(d, from, match)
		if err != nil {
			return out, err
		}
		out.Items = removed
		for _, it := range removed {
			out.Events = append(out.Events, types.Event{
				Type: "item_removed",
				Data: map[string]any{"item": it.ID, "container": from},
			})
		}

	case MoveItem:
		to := str(p, "container")
		item, _ := p["item"].(*types.Item)
		if item == nil {
			return out, fmt.Errorf("%s: missing item", eff.Type)
		}
		if err := state.MoveItem(d, item, to); err != nil {
			return out, err
		}
		out.Events = append(out.Events, itemEvent(to, item))

	case SpawnItem:
		to := str(p, "container")
		item, err := state.Spawn(d, str(p, "template"), to)
		if err != nil {
			return out, err
		}
		out.Items = []*types.Item{item}
		out.Events = append(out.Events, itemEvent(to, item))

	case RevealItem:
		room, err := state.GetRoom(d, str(p, "room"))
		if err != nil {
			return out, err
		}
		id := str(p, "item")
		var found *types.Item
		for _, it := range room.Items {
			if it.ID == id {
				found = it
				break
			}
		}
		if found == nil {
			return out, &state.NotFoundError{Kind: "item", ID: room.ID + ":" + id}
		}
		found.IsHidden = false

	case SetFlag:
		flag := str(p, "flag")
		state.SetFlag(d, flag, p["value"])
		out.Events = append(out.Events, types.Event{
			Type: "flag_changed",
			Data: map[string]any{"flag": flag, "value": p["value"]},
		})

	case SetRoomFlag:
		room, err := state.GetRoom(d, str(p, "room"))
		if err != nil {
			return out, err
		}
		state.SetRoomFlag(room, str(p, "flag"), p["value"])

	case MutateExit:
		room, err := state.GetRoom(d, str(p, "room"))
		if err != nil {
			return out, err
		}
		patch, _ := p["patch"].(state.ExitPatch)
		if err := state.MutateExit(room, str(p, "direction"), patch); err != nil {
			return out, err
		}

	case AddExit:
		room, err := state.GetRoom(d, str(p, "room"))
		if err != nil {
			return out, err
		}
		exit, _ := p["exit"].(*types.Exit)
		if exit == nil {
			return out, fmt.Errorf("%s: missing exit", eff.Type)
		}
		state.AddExit(room, exit)

	case SetExits:
		room, err := state.GetRoom(d, str(p, "room"))
		if err != nil {
			return out, err
		}
		exits, _ := p["exits"].([]*types.Exit)
		state.SetExits(room, exits)

	case AddCharacter:
		c, _ := p["character"].(*types.Character)
		if c == nil {
			return out, fmt.Errorf("%s: missing character", eff.Type)
		}
		state.AddCharacter(d, c)
		out.Events = append(out.Events, types.Event{
			Type: "character_added",
			Data: map[string]any{"character": c.ID},
		})

	case RemoveCharacter:
		id := str(p, "character")
		if err := state.RemoveCharacter(d, id); err != nil {
			return out, err
		}
		out.Events = append(out.Events, types.Event{
			Type: "character_removed",
			Data: map[string]any{"character": id},
		})

	case MoveCharacter:
		if err := state.MoveCharacter(d, str(p, "character"), str(p, "room")); err != nil {
			return out, err
		}

	case MovePlayer:
		room := str(p, "room")
		if err := state.SetRoom(d, room); err != nil {
			return out, err
		}
		out.Events = append(out.Events, types.Event{
			Type: "room_entered",
			Data: map[string]any{"room": room},
		})

	default:
		return out, fmt.Errorf("unknown effect type %q", eff.Type)
	}

	return out, nil
}

func itemEvent(container string, item *types.Item) types.Event {
	typ := "item_placed"
	if container == state.Inventory {
		typ = "item_taken"
	}
	return types.Event{
		Type: typ,
		Data: map[string]any{"item": item.ID, "container": container},
	}
}

func str(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

// Describe renders an effect as a single trace line.
func Describe(eff types.Effect) string {
	keys := make([]string, 0, len(eff.Params))
	for k := range eff.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{eff.Type}
	for _, k := range keys {
		parts = append(parts, k+"="+describeValue(eff.Params[k]))
	}
	return strings.Join(parts, " ")
}

func describeValue(v any) string {
	switch val := v.(type) {
	case *types.Item:
		return val.ID
	case *types.Exit:
		return strings.Join(val.Dir, "/") + "->" + val.ID + val.External
	case []*types.Exit:
		dirs := make([]string, 0, len(val))
		for _, ex := range val {
			dirs = append(dirs, describeValue(ex))
		}
		return "[" + strings.Join(dirs, ",") + "]"
	case *types.Character:
		return val.ID
	case func(*types.Item) bool:
		return "<match>"
	case state.ExitPatch:
		var fields []string
		if val.Block != nil {
			fields = append(fields, fmt.Sprintf("block:%q", *val.Block))
		}
		if val.ID != nil {
			fields = append(fields, "id:"+*val.ID)
		}
		if val.External != nil {
			fields = append(fields, "external:"+*val.External)
		}
		return "{" + strings.Join(fields, ",") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
