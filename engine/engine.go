// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, hook dispatch, navigation, dialogue and events into a
// single turn.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/gamedisk/engine/effects"
	"github.com/nathoo/gamedisk/engine/events"
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/nav"
	"github.com/nathoo/gamedisk/engine/parser"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// ErrMidCommand is returned when the world is snapshotted or replaced while a
// command is still being processed.
var ErrMidCommand = errors.New("engine: command in progress")

// Factory builds a fresh disk and the handlers its hooks name.
type Factory func() (*types.Disk, *hooks.Registry, error)

// Engine holds the handler registry and the mutable disk.
type Engine struct {
	Disk     *types.Disk
	Handlers *hooks.Registry

	// Opening is the output produced while loading: title, intro, onLoad
	// text and the first room description.
	Opening types.Result

	busy bool
	res  *types.Result
}

// LoadDisk initializes an engine from a disk factory. The disk is validated
// and its onLoad hook fired exactly once.
func LoadDisk(factory Factory) (*Engine, error) {
	d, reg, err := factory()
	if err != nil {
		return nil, fmt.Errorf("building disk: %w", err)
	}
	if reg == nil {
		reg = hooks.NewRegistry()
	}
	state.Normalize(d)
	if d.RoomID == "" {
		d.RoomID = d.Game.Start
	}
	if err := Validate(d, reg); err != nil {
		reg.Close()
		return nil, err
	}

	e := &Engine{Disk: d, Handlers: reg}
	err = e.run(func() error {
		if d.Game.Title != "" {
			e.println(d.Game.Title)
		}
		if d.Game.Intro != "" {
			e.println(d.Game.Intro)
		}
		if err := e.invoke(d.OnLoad, hooks.Target{Hook: hooks.OnLoad}); err != nil {
			return err
		}
		room, err := state.CurrentRoom(d)
		if err != nil {
			return err
		}
		room.Visits++
		e.println(e.describeRoom(room)...)
		return nil
	}, &e.Opening)
	if err != nil {
		reg.Close()
		return nil, fmt.Errorf("onLoad: %w", err)
	}
	return e, nil
}

// Step processes one player command and returns the result. A non-nil error
// is an authoring defect in the disk (a handler failed or referenced missing
// content); it is never narrative and the result's output is still valid.
func (e *Engine) Step(input string) (types.Result, error) {
	var result types.Result
	if e.busy {
		return result, ErrMidCommand
	}
	err := e.run(func() error {
		return e.step(input)
	}, &result)
	return result, err
}

// run executes fn as one command: output and effects go to result, and
// event listeners fire once fn has returned.
func (e *Engine) run(fn func() error, result *types.Result) error {
	e.busy = true
	e.res = result
	defer func() {
		e.busy = false
		e.res = nil
	}()

	if err := fn(); err != nil {
		return err
	}

	// Dispatch events (single pass); listener events are recorded only.
	emitted := append([]types.Event(nil), result.Events...)
	return events.Dispatch(emitted, e.Disk.Listeners, func(name string, ev types.Event) error {
		return e.invoke(name, hooks.Target{Hook: hooks.OnEvent, Event: &ev})
	})
}

func (e *Engine) step(input string) error {
	d := e.Disk

	// The session is over; block all gameplay commands.
	if d.Ended {
		e.println("The story has ended. Use /load to restore a save or /quit to exit.")
		return nil
	}

	intent := parser.Parse(input)
	if intent.Verb == "" {
		e.println("What do you want to do?")
		return nil
	}

	d.CommandLog = append(d.CommandLog, strings.TrimSpace(input))
	defer func() { d.Turn++ }()

	// An active conversation gets first refusal on the input.
	if d.Conversant != "" {
		handled, err := e.converse(input, intent)
		if handled || err != nil {
			return err
		}
	}

	switch intent.Verb {
	case parser.Go:
		return e.goDir(intent.Object)
	case parser.Look:
		return e.look(intent.Object)
	case parser.Take:
		return e.take(intent.Object)
	case parser.Use:
		return e.use(intent.Object)
	case parser.Talk:
		return e.talk(intent.Object, intent.Target)
	case parser.Inventory:
		e.inventory()
		return nil
	case parser.Help:
		e.println(helpText...)
		return nil
	case parser.Wait:
		e.println("Time passes.")
		return nil
	case parser.Leave:
		e.println("You aren't talking to anyone.")
		return nil
	}

	// A bare word naming an exit of this room ("portal") is movement.
	if intent.Object == "" {
		if room, err := state.CurrentRoom(d); err == nil {
			if out, _ := nav.Plan(room, intent.Verb); out != nav.NoExit {
				return e.goDir(intent.Verb)
			}
		}
	}
	e.println(fmt.Sprintf("I don't know how to %q. Type 'help' for a list of commands.", intent.Verb))
	return nil
}

var helpText = []string{
	"Commands:",
	"  look [thing|direction]   describe the room, an object or an exit",
	"  go <direction>           move (or just type the direction: n, s, up...)",
	"  take <item>              pick something up",
	"  use <item>               use an object here or in your inventory",
	"  talk <character>         start a conversation; pick topics by number",
	"  inventory                list what you carry",
	"  leave                    end a conversation",
}

// Describe returns the description of the current room without taking a turn.
func (e *Engine) Describe() []string {
	room, err := state.CurrentRoom(e.Disk)
	if err != nil {
		return []string{"You are somewhere unknown."}
	}
	return e.describeRoom(room)
}

// Close releases the resources behind the disk's handlers. The engine must
// not be stepped afterwards.
func (e *Engine) Close() {
	e.Handlers.Close()
}

// Snapshot returns a deep copy of the disk. It fails when called while a
// command is being processed, so a snapshot never captures a torn state.
func (e *Engine) Snapshot() (*types.Disk, error) {
	if e.busy {
		return nil, ErrMidCommand
	}
	return cloneDisk(e.Disk)
}

// Restore replaces the disk with a previously snapshotted one. onLoad is not
// fired again.
func (e *Engine) Restore(d *types.Disk) error {
	if e.busy {
		return ErrMidCommand
	}
	state.Normalize(d)
	if err := Validate(d, e.Handlers); err != nil {
		return fmt.Errorf("restoring disk: %w", err)
	}
	e.Disk = d
	return nil
}

func cloneDisk(d *types.Disk) (*types.Disk, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("copying disk: %w", err)
	}
	var out types.Disk
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copying disk: %w", err)
	}
	state.Normalize(&out)
	return &out, nil
}

// println appends lines to the transcript of the current command.
func (e *Engine) println(lines ...string) {
	e.res.Output = append(e.res.Output, lines...)
}

func (e *Engine) emit(typ string, data map[string]any) {
	e.res.Events = append(e.res.Events, types.Event{Type: typ, Data: data})
}

// apply routes one mutation through the effects package and records it.
func (e *Engine) apply(typ string, params map[string]any) (effects.Applied, error) {
	eff := types.Effect{Type: typ, Params: params}
	out, err := effects.Apply(e.Disk, eff)
	if err != nil {
		return out, err
	}
	e.res.Effects = append(e.res.Effects, eff)
	e.res.Events = append(e.res.Events, out.Events...)
	return out, nil
}

// invoke runs a named handler with a capability context bound to this
// command.
func (e *Engine) invoke(name string, t hooks.Target) error {
	if name == "" {
		return nil
	}
	if t.Room == nil {
		t.Room, _ = state.CurrentRoom(e.Disk)
	}
	err := e.Handlers.Invoke(name, &hookCtx{e: e}, t)
	if err != nil && !errors.Is(err, hooks.ErrCancel) {
		slog.Debug("handler failed", "handler", name, "hook", t.Hook, "error", err)
	}
	return err
}
