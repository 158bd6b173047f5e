// Package resolve maps noun phrases from parsed intents to entities in scope.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/gamedisk/engine/parser"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// Scope selects which containers a lookup searches.
type Scope uint8

const (
	ScopeRoom Scope = 1 << iota
	ScopeInventory
	ScopeCharacters
	ScopeExits

	ScopeItems = ScopeRoom | ScopeInventory
	ScopeAll   = ScopeRoom | ScopeInventory | ScopeCharacters | ScopeExits
)

// Kind is the kind of entity a match refers to.
type Kind int

const (
	KindItem Kind = iota + 1
	KindCharacter
	KindExit
)

// Match is a resolved entity.
type Match struct {
	Kind      Kind
	Item      *types.Item
	Character *types.Character
	Exit      *types.Exit
	Container string // for items: the container holding it
}

// ID returns the identifier of the matched entity.
func (m Match) ID() string {
	switch m.Kind {
	case KindItem:
		return m.Item.ID
	case KindCharacter:
		return m.Character.ID
	case KindExit:
		if len(m.Exit.Dir) > 0 {
			return m.Exit.Dir[0]
		}
	}
	return ""
}

// NotFoundError indicates no entity in scope matched a phrase.
type NotFoundError struct {
	Phrase string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Phrase)
}

// Index is a case-folded multi-key lookup table over one scope. Candidates
// for a key keep declaration order: room items, inventory, characters, exits.
type Index struct {
	keys  map[string][]Match
	order []Match
}

// Build indexes the entities visible from the player's current room.
func Build(d *types.Disk, scope Scope) *Index {
	ix := &Index{keys: map[string][]Match{}}
	room, _ := state.CurrentRoom(d)

	if scope&ScopeRoom != 0 && room != nil {
		for _, it := range state.VisibleItems(room) {
			ix.addItem(it, state.RoomContainer(room.ID))
		}
	}
	if scope&ScopeInventory != 0 {
		for _, it := range d.Inventory {
			ix.addItem(it, state.Inventory)
		}
	}
	if scope&ScopeCharacters != 0 && room != nil {
		for _, c := range state.CharactersIn(d, room.ID) {
			m := Match{Kind: KindCharacter, Character: c}
			ix.add(m, c.ID, c.Name)
		}
	}
	if scope&ScopeExits != 0 && room != nil {
		for _, ex := range room.Exits {
			var dirs []string
			for _, dir := range ex.Dir {
				dirs = append(dirs, parser.DirectionForms(dir)...)
			}
			ix.add(Match{Kind: KindExit, Exit: ex}, "", dirs)
		}
	}
	return ix
}

func (ix *Index) addItem(it *types.Item, container string) {
	ix.add(Match{Kind: KindItem, Item: it, Container: container}, it.ID, it.Name)
}

// add indexes m under its declared names. The ID is a key only for an
// entity declared without names; players never address entities by ID.
func (ix *Index) add(m Match, id string, names []string) {
	ix.order = append(ix.order, m)
	seen := map[string]bool{}
	keys := make([]string, 0, len(names)+2)
	if len(names) == 0 && id != "" {
		keys = append(keys, state.Fold(id), state.Fold(strings.ReplaceAll(id, "_", " ")))
	}
	for _, n := range names {
		keys = append(keys, state.Fold(n))
	}
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		ix.keys[k] = append(ix.keys[k], m)
	}
}

// Lookup returns every candidate whose alias equals phrase after folding.
func (ix *Index) Lookup(phrase string) []Match {
	return ix.keys[state.Fold(phrase)]
}

// Resolve maps a phrase to the first matching entity in scope. An exact alias
// always beats a partial one; a single-word phrase may otherwise match one
// word of a multi-word alias ("key" for "rusty key").
func Resolve(d *types.Disk, phrase string, scope Scope) (Match, error) {
	ix := Build(d, scope)
	if ms := ix.Lookup(phrase); len(ms) > 0 {
		return ms[0], nil
	}
	if m, ok := ix.partial(phrase); ok {
		return m, nil
	}
	return Match{}, &NotFoundError{Phrase: phrase}
}

func (ix *Index) partial(phrase string) (Match, bool) {
	word := state.Fold(phrase)
	if word == "" || strings.Contains(word, " ") {
		return Match{}, false
	}
	for _, m := range ix.order {
		for _, n := range names(m) {
			for _, w := range strings.Fields(state.Fold(n)) {
				if w == word {
					return m, true
				}
			}
		}
	}
	return Match{}, false
}

func names(m Match) []string {
	switch m.Kind {
	case KindItem:
		return m.Item.Name
	case KindCharacter:
		return m.Character.Name
	}
	return nil
}
