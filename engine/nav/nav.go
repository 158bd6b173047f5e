// Package nav decides what a direction token does from a given room. It
// never mutates state; the engine applies the outcome.
package nav

import (
	"github.com/nathoo/gamedisk/engine/parser"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// Outcome is the result of planning a move.
type Outcome int

const (
	NoExit   Outcome = iota // no exit matches the token
	Blocked                 // exit exists but carries a block message
	Moved                   // exit leads to another room
	External                // exit leaves the world
)

func (o Outcome) String() string {
	switch o {
	case NoExit:
		return "no_exit"
	case Blocked:
		return "blocked"
	case Moved:
		return "moved"
	case External:
		return "external"
	}
	return "unknown"
}

// NoExitMessage is printed for an unresolvable direction.
const NoExitMessage = "You can't go that way."

// Plan resolves token against the room's exits. The token as typed is
// tried first, then its abbreviated or expanded form, so an exit declared
// only as "u" still answers to "up".
func Plan(room *types.Room, token string) (Outcome, *types.Exit) {
	var ex *types.Exit
	for _, form := range parser.DirectionForms(token) {
		if ex = state.GetExit(form, room.Exits); ex != nil {
			break
		}
	}
	switch {
	case ex == nil:
		return NoExit, nil
	case ex.Block != "":
		return Blocked, ex
	case ex.External != "" && ex.ID == "":
		return External, ex
	default:
		return Moved, ex
	}
}

// Directions returns the canonical direction of every exit, in order.
func Directions(room *types.Room) []string {
	dirs := make([]string, 0, len(room.Exits))
	for _, ex := range room.Exits {
		if len(ex.Dir) > 0 {
			dirs = append(dirs, ex.Dir[0])
		}
	}
	return dirs
}
