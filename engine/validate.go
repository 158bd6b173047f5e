package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Validate checks a disk for referential integrity: rooms named by exits,
// characters and the start position exist, and every hook names a registered
// handler. Warnings are logged and do not fail validation.
func Validate(d *types.Disk, reg *hooks.Registry) error {
	ve := &ValidationError{}
	errorf := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}
	warnf := func(format string, args ...any) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(format, args...))
	}
	handler := func(owner, hook, name string) {
		if name == "" {
			return
		}
		if _, ok := reg.Lookup(name); !ok {
			errorf("%s %s names unregistered handler %q", owner, hook, name)
		}
	}

	if d.Game.Title == "" {
		errorf("game title is required")
	}
	if d.Game.Start == "" {
		errorf("game start room is required")
	} else if _, err := state.GetRoom(d, d.Game.Start); err != nil {
		errorf("start room %q not found in defined rooms", d.Game.Start)
	}
	if _, err := state.GetRoom(d, d.RoomID); err != nil {
		errorf("current room %q not found in defined rooms", d.RoomID)
	}
	handler("disk", hooks.OnLoad, d.OnLoad)

	roomIDs := map[string]bool{}
	for _, r := range d.Rooms {
		if r.ID == "" {
			errorf("room with name %q has no id", r.Name)
			continue
		}
		if roomIDs[r.ID] {
			errorf("duplicate room id %q", r.ID)
		}
		roomIDs[r.ID] = true
	}

	for _, r := range d.Rooms {
		owner := fmt.Sprintf("room %q", r.ID)
		handler(owner, hooks.OnEnter, r.OnEnter)
		handler(owner, hooks.OnLook, r.OnLook)

		for _, ex := range r.Exits {
			if len(ex.Dir) == 0 {
				errorf("%s has an exit with no direction", owner)
				continue
			}
			switch {
			case ex.ID == "" && ex.External == "":
				errorf("%s exit %q has no target", owner, ex.Dir[0])
			case ex.ID != "" && !roomIDs[ex.ID]:
				errorf("%s exit %q points to undefined room %q", owner, ex.Dir[0], ex.ID)
			}
		}

		aliases := map[string]string{}
		for _, it := range r.Items {
			validateItem(fmt.Sprintf("item %q in %s", it.ID, owner), it, handler, errorf)
			for _, n := range it.Name {
				k := state.Fold(n)
				if other, ok := aliases[k]; ok && other != it.ID {
					warnf("%s: alias %q is shared by %q and %q; the first declared wins", owner, n, other, it.ID)
				}
				aliases[k] = it.ID
			}
		}
	}

	for _, it := range d.Inventory {
		validateItem(fmt.Sprintf("inventory item %q", it.ID), it, handler, errorf)
	}
	for id, tpl := range d.Templates {
		validateItem(fmt.Sprintf("template %q", id), tpl, handler, errorf)
	}

	for _, c := range d.Characters {
		owner := fmt.Sprintf("character %q", c.ID)
		if c.ID == "" {
			errorf("character with no name or id")
			continue
		}
		if !roomIDs[c.RoomID] {
			errorf("%s is in undefined room %q", owner, c.RoomID)
		}
		topicIDs := map[string]bool{}
		for _, t := range c.Topics {
			if topicIDs[t.ID] {
				errorf("%s has duplicate topic %q", owner, t.ID)
			}
			topicIDs[t.ID] = true
		}
		for _, t := range c.Topics {
			handler(fmt.Sprintf("%s topic %q", owner, t.ID), hooks.OnSelected, t.OnSelected)
			for _, p := range t.Prereqs {
				if !topicIDs[p] {
					errorf("%s topic %q requires unknown topic %q", owner, t.ID, p)
				}
			}
		}
	}

	if d.Conversant != "" && state.CharacterByID(d, d.Conversant) == nil {
		errorf("conversant %q is not a character", d.Conversant)
	}

	for eventType, names := range d.Listeners {
		for _, name := range names {
			handler("listener for", eventType, name)
		}
	}

	for _, w := range ve.Warnings {
		slog.Warn("disk validation", "warning", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateItem(owner string, it *types.Item, handler func(owner, hook, name string), errorf func(string, ...any)) {
	if it.ID == "" {
		errorf("%s has no name or id", owner)
	}
	handler(owner, hooks.OnLook, it.OnLook)
	handler(owner, hooks.OnUse, it.OnUse)
	handler(owner, hooks.OnTake, it.OnTake)
}
