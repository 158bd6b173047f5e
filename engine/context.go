package engine

import (
	"github.com/nathoo/gamedisk/engine/effects"
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// hookCtx is the capability object handed to handlers. Reads go straight to
// the world store; every mutation goes through effects so it shows up in the
// command's trace.
type hookCtx struct {
	e *Engine
}

var _ hooks.Context = (*hookCtx)(nil)

func (c *hookCtx) disk() *types.Disk { return c.e.Disk }

func (c *hookCtx) Println(text string) { c.e.println(text) }

func (c *hookCtx) Room(id string) (*types.Room, error) { return state.GetRoom(c.disk(), id) }

func (c *hookCtx) CurrentRoom() *types.Room {
	r, _ := state.CurrentRoom(c.disk())
	return r
}

func (c *hookCtx) Character(aliasOrName string) *types.Character {
	return state.GetCharacter(c.disk(), aliasOrName)
}

func (c *hookCtx) InventoryItem(alias string) *types.Item {
	return state.GetItemInInventory(c.disk(), alias)
}

func (c *hookCtx) Exit(roomID, direction string) (*types.Exit, error) {
	r, err := state.GetRoom(c.disk(), roomID)
	if err != nil {
		return nil, err
	}
	ex := state.GetExit(direction, r.Exits)
	if ex == nil {
		return nil, &state.NotFoundError{Kind: "exit", ID: roomID + ":" + direction}
	}
	return ex, nil
}

func (c *hookCtx) HasItem(itemID string) bool { return state.HasItem(c.disk(), itemID) }

func (c *hookCtx) Flag(key string) any { return state.GetFlag(c.disk(), key) }

func (c *hookCtx) FlagIsSet(key string) bool { return state.FlagIsSet(c.disk(), key) }

func (c *hookCtx) RoomFlag(roomID, key string) (any, error) {
	r, err := state.GetRoom(c.disk(), roomID)
	if err != nil {
		return nil, err
	}
	return state.RoomFlag(r, key), nil
}

func (c *hookCtx) AddItem(container string, item *types.Item) error {
	_, err := c.e.apply(effects.AddItem, map[string]any{"container": container, "item": item})
	return err
}

func (c *hookCtx) RemoveItem(container string, match func(*types.Item) bool) ([]*types.Item, error) {
	out, err := c.e.apply(effects.RemoveItem, map[string]any{"container": container, "match": match})
	return out.Items, err
}

func (c *hookCtx) MoveItem(item *types.Item, container string) error {
	_, err := c.e.apply(effects.MoveItem, map[string]any{"item": item, "container": container})
	return err
}

func (c *hookCtx) Spawn(templateID, container string) (*types.Item, error) {
	out, err := c.e.apply(effects.SpawnItem, map[string]any{"template": templateID, "container": container})
	if err != nil {
		return nil, err
	}
	return out.Items[0], nil
}

func (c *hookCtx) Reveal(roomID, itemID string) error {
	_, err := c.e.apply(effects.RevealItem, map[string]any{"room": roomID, "item": itemID})
	return err
}

func (c *hookCtx) SetFlag(key string, value any) {
	// set_flag cannot fail.
	_, _ = c.e.apply(effects.SetFlag, map[string]any{"flag": key, "value": value})
}

func (c *hookCtx) SetRoomFlag(roomID, key string, value any) error {
	_, err := c.e.apply(effects.SetRoomFlag, map[string]any{"room": roomID, "flag": key, "value": value})
	return err
}

func (c *hookCtx) MutateExit(roomID, direction string, patch state.ExitPatch) error {
	_, err := c.e.apply(effects.MutateExit, map[string]any{"room": roomID, "direction": direction, "patch": patch})
	return err
}

func (c *hookCtx) Unblock(roomID, direction string) error {
	empty := ""
	return c.MutateExit(roomID, direction, state.ExitPatch{Block: &empty})
}

func (c *hookCtx) Block(roomID, direction, message string) error {
	return c.MutateExit(roomID, direction, state.ExitPatch{Block: &message})
}

func (c *hookCtx) AddExit(roomID string, exit *types.Exit) error {
	_, err := c.e.apply(effects.AddExit, map[string]any{"room": roomID, "exit": exit})
	return err
}

func (c *hookCtx) SetExits(roomID string, exits []*types.Exit) error {
	_, err := c.e.apply(effects.SetExits, map[string]any{"room": roomID, "exits": exits})
	return err
}

func (c *hookCtx) AddCharacter(ch *types.Character) {
	// add_character cannot fail for a non-nil character.
	_, _ = c.e.apply(effects.AddCharacter, map[string]any{"character": ch})
}

func (c *hookCtx) RemoveCharacter(id string) error {
	if c.disk().Conversant == id {
		c.e.endConversation(false)
	}
	_, err := c.e.apply(effects.RemoveCharacter, map[string]any{"character": id})
	return err
}

func (c *hookCtx) MoveCharacter(id, roomID string) error {
	_, err := c.e.apply(effects.MoveCharacter, map[string]any{"character": id, "room": roomID})
	return err
}

func (c *hookCtx) GoDir(direction string) error { return c.e.goDir(direction) }

func (c *hookCtx) EndConversation() { c.e.endConversation(false) }
