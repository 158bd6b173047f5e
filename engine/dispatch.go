package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/gamedisk/engine/effects"
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/nav"
	"github.com/nathoo/gamedisk/engine/resolve"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// goDir moves the player through the exit matching token and fires the
// destination's onEnter.
func (e *Engine) goDir(token string) error {
	d := e.Disk
	if strings.TrimSpace(token) == "" {
		e.println("Go where?")
		return nil
	}
	room, err := state.CurrentRoom(d)
	if err != nil {
		return err
	}

	outcome, ex := nav.Plan(room, token)
	switch outcome {
	case nav.NoExit:
		e.println(nav.NoExitMessage)
		return nil

	case nav.Blocked:
		e.println(ex.Block)
		return nil

	case nav.External:
		e.endConversation(false)
		d.Ended = true
		d.Terminus = ex.External
		e.println("You step beyond the edge of the world.")
		e.emit("session_ended", map[string]any{"terminus": ex.External, "room": room.ID})
		return nil
	}

	if d.Conversant != "" {
		e.endConversation(false)
	}
	if _, err := e.apply(effects.MovePlayer, map[string]any{"room": ex.ID}); err != nil {
		return err
	}
	dest, err := state.CurrentRoom(d)
	if err != nil {
		return err
	}
	dest.Visits++
	e.println(e.describeRoom(dest)...)
	return e.invoke(dest.OnEnter, hooks.Target{Hook: hooks.OnEnter, Room: dest})
}

// look describes the room, an entity or an exit.
func (e *Engine) look(phrase string) error {
	room, err := state.CurrentRoom(e.Disk)
	if err != nil {
		return err
	}
	if phrase == "" {
		e.println(e.describeRoom(room)...)
		return e.invoke(room.OnLook, hooks.Target{Hook: hooks.OnLook, Room: room})
	}

	m, err := resolve.Resolve(e.Disk, phrase, resolve.ScopeAll)
	if err != nil {
		e.notHere("look", phrase, err)
		return nil
	}

	switch m.Kind {
	case resolve.KindItem:
		if m.Item.OnLook != "" {
			return e.invoke(m.Item.OnLook, hooks.Target{Hook: hooks.OnLook, Item: m.Item})
		}
		if m.Item.Desc != "" {
			e.println(m.Item.Desc)
		} else {
			e.println(fmt.Sprintf("You see nothing special about the %s.", itemName(m.Item)))
		}
	case resolve.KindCharacter:
		if m.Character.Desc != "" {
			e.println(m.Character.Desc)
		} else {
			e.println(fmt.Sprintf("You see %s.", characterName(m.Character)))
		}
	case resolve.KindExit:
		e.println(e.describeExit(m.Exit))
	}
	return nil
}

// take moves an item into the inventory, giving onTake the chance to veto.
func (e *Engine) take(phrase string) error {
	if phrase == "" {
		e.println("Take what?")
		return nil
	}
	m, err := resolve.Resolve(e.Disk, phrase, resolve.ScopeItems|resolve.ScopeCharacters)
	if err != nil {
		e.notHere("take", phrase, err)
		return nil
	}
	if m.Kind == resolve.KindCharacter {
		e.println(fmt.Sprintf("%s would not appreciate that.", characterName(m.Character)))
		return nil
	}

	item := m.Item
	if m.Container == state.Inventory {
		e.println("You already have that.")
		return nil
	}
	if !item.IsTakeable && item.OnTake == "" {
		e.println("You can't take that.")
		return nil
	}

	if item.OnTake != "" {
		err := e.invoke(item.OnTake, hooks.Target{Hook: hooks.OnTake, Item: item})
		if errors.Is(err, hooks.ErrCancel) {
			return nil
		}
		if err != nil {
			return err
		}
		// The handler may have moved the item itself.
		if loc, ok := state.Locate(e.Disk, item); !ok || loc != m.Container {
			return nil
		}
		if !item.IsTakeable {
			return nil
		}
	}

	if _, err := e.apply(effects.MoveItem, map[string]any{"item": item, "container": state.Inventory}); err != nil {
		return err
	}
	e.println(fmt.Sprintf("You take the %s.", itemName(item)))
	return nil
}

// use fires an item's onUse hook.
func (e *Engine) use(phrase string) error {
	if phrase == "" {
		e.println("Use what?")
		return nil
	}
	m, err := resolve.Resolve(e.Disk, phrase, resolve.ScopeItems|resolve.ScopeCharacters)
	if err != nil {
		e.notHere("use", phrase, err)
		return nil
	}
	if m.Kind == resolve.KindCharacter {
		e.println(fmt.Sprintf("Perhaps try talking to %s.", characterName(m.Character)))
		return nil
	}
	if m.Item.OnUse == "" {
		e.println("Nothing happens.")
		return nil
	}
	return e.invoke(m.Item.OnUse, hooks.Target{Hook: hooks.OnUse, Item: m.Item})
}

func (e *Engine) inventory() {
	inv := e.Disk.Inventory
	if len(inv) == 0 {
		e.println("You are carrying nothing.")
		return
	}
	names := make([]string, 0, len(inv))
	for _, it := range inv {
		names = append(names, itemName(it))
	}
	e.println("You are carrying: " + strings.Join(names, ", ") + ".")
}

// notHere reports an unresolvable noun. Words that appear in something the
// player can see get a softer message than a flat "not here".
func (e *Engine) notHere(verb, phrase string, err error) {
	if msg := e.sceneryFallback(verb, phrase); msg != "" {
		e.println(msg)
		return
	}
	e.println(capitalize(err.Error()) + ".")
}

func (e *Engine) sceneryFallback(verb, phrase string) string {
	room, err := state.CurrentRoom(e.Disk)
	if err != nil {
		return ""
	}
	objLower := strings.ToLower(phrase)

	descriptions := []string{room.Desc}
	for _, it := range state.VisibleItems(room) {
		descriptions = append(descriptions, it.Desc)
	}
	for _, it := range e.Disk.Inventory {
		descriptions = append(descriptions, it.Desc)
	}

	for _, desc := range descriptions {
		descLower := strings.ToLower(desc)
		if strings.Contains(descLower, objLower) {
			return sceneryMessage(verb, phrase)
		}
		for _, word := range strings.Fields(objLower) {
			if len(word) >= 4 && strings.Contains(descLower, word) {
				return sceneryMessage(verb, phrase)
			}
		}
	}
	return ""
}

func sceneryMessage(verb, object string) string {
	switch verb {
	case "look":
		return fmt.Sprintf("You see nothing special about the %s.", object)
	case "take":
		return fmt.Sprintf("You can't take the %s.", object)
	default:
		return fmt.Sprintf("You can't do anything useful with the %s.", object)
	}
}

// describeRoom produces the standard room description output.
func (e *Engine) describeRoom(room *types.Room) []string {
	var output []string
	if room.Name != "" {
		output = append(output, room.Name)
	}
	if room.Desc != "" {
		output = append(output, room.Desc)
	}

	if items := state.VisibleItems(room); len(items) > 0 {
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, itemName(it))
		}
		output = append(output, "You see: "+strings.Join(names, ", ")+".")
	}

	if chars := state.CharactersIn(e.Disk, room.ID); len(chars) > 0 {
		names := make([]string, 0, len(chars))
		for _, c := range chars {
			names = append(names, characterName(c))
		}
		output = append(output, "Here: "+strings.Join(names, ", ")+".")
	}

	if dirs := nav.Directions(room); len(dirs) > 0 {
		output = append(output, "Exits: "+strings.Join(dirs, ", ")+".")
	}
	return output
}

func (e *Engine) describeExit(ex *types.Exit) string {
	dir := "that way"
	if len(ex.Dir) > 0 {
		dir = ex.Dir[0]
	}
	switch {
	case ex.Block != "":
		return ex.Block
	case ex.External != "" && ex.ID == "":
		return fmt.Sprintf("The way %s leads out of this world.", dir)
	}
	if r, err := state.GetRoom(e.Disk, ex.ID); err == nil && r.Name != "" {
		return fmt.Sprintf("The way %s leads to %s.", dir, r.Name)
	}
	return fmt.Sprintf("You can go %s.", dir)
}

func itemName(it *types.Item) string {
	if len(it.Name) > 0 {
		return it.Name[0]
	}
	return it.ID
}

func characterName(c *types.Character) string {
	if len(c.Name) > 0 {
		return c.Name[0]
	}
	return c.ID
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
