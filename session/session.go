// Package session binds a running engine to a save store and implements the
// slash meta-commands shared by the plain and full-screen front ends.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/engine/effects"
	"github.com/nathoo/gamedisk/engine/save"
	"github.com/nathoo/gamedisk/types"
)

// DefaultSlot is used by /save and /load without an argument.
const DefaultSlot = "quicksave"

// Session is one play session.
type Session struct {
	Engine *engine.Engine
	Store  save.Store // nil disables the save commands
	ID     uuid.UUID
	Trace  bool

	logger  *slog.Logger
	lastCmd string
}

// Output is what one line of player input produced. Lines are game text;
// System lines are front-end messages (meta-command replies, trace, errors).
type Output struct {
	Lines  []string
	System []string
	Quit   bool
}

// New starts a session with a fresh ID.
func New(eng *engine.Engine, store save.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &Session{
		Engine: eng,
		Store:  store,
		ID:     id,
		logger: logger.With("session", id.String()),
	}
}

// Handle processes one line of input: a meta-command, "again", or a game
// command.
func (s *Session) Handle(ctx context.Context, input string) Output {
	input = strings.TrimSpace(input)
	if input == "" {
		return Output{}
	}

	if strings.HasPrefix(input, "/") {
		return s.meta(ctx, input)
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if s.lastCmd == "" {
			return Output{System: []string{"Nothing to repeat."}}
		}
		input = s.lastCmd
	} else {
		s.lastCmd = input
	}

	res, err := s.Engine.Step(input)
	out := Output{Lines: res.Output}
	if err != nil {
		s.logger.Error("command failed", "input", input, "error", err)
		out.System = append(out.System, fmt.Sprintf("Error: %v", err))
	}
	if s.Trace {
		out.System = append(out.System, Trace(res)...)
	}
	return out
}

func (s *Session) meta(ctx context.Context, input string) Output {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return Output{System: []string{"Goodbye."}, Quit: true}
	case "/save":
		return s.save(ctx, arg)
	case "/load":
		return s.load(ctx, arg)
	case "/saves":
		return s.list(ctx)
	case "/delete":
		return s.delete(ctx, arg)
	case "/help":
		return Output{System: Help}
	case "/state":
		return Output{System: State(s.Engine.Disk)}
	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			return Output{System: []string{"Trace output enabled."}}
		}
		return Output{System: []string{"Trace output disabled."}}
	}
	return Output{System: []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}}
}

var errNoStore = errors.New("saving is disabled")

func (s *Session) save(ctx context.Context, slot string) Output {
	if slot == "" {
		slot = DefaultSlot
	}
	if s.Store == nil {
		return Output{System: []string{fmt.Sprintf("Save failed: %v", errNoStore)}}
	}
	d, err := s.Engine.Snapshot()
	if err == nil {
		err = s.Store.Save(ctx, slot, save.New(d, s.ID))
	}
	if err != nil {
		s.logger.Error("save failed", "slot", slot, "error", err)
		return Output{System: []string{fmt.Sprintf("Save failed: %v", err)}}
	}
	s.logger.Info("game saved", "slot", slot, "turn", d.Turn)
	return Output{System: []string{fmt.Sprintf("Game saved to %s.", slot)}}
}

// load restores a slot. The running game is untouched when anything fails.
func (s *Session) load(ctx context.Context, slot string) Output {
	if slot == "" {
		slot = DefaultSlot
	}
	if s.Store == nil {
		return Output{System: []string{fmt.Sprintf("Load failed: %v", errNoStore)}}
	}
	snap, err := s.Store.Load(ctx, slot)
	if err == nil {
		err = save.Compatible(snap, s.Engine.Disk.Game)
	}
	if err == nil {
		err = s.Engine.Restore(snap.Disk)
	}
	if err != nil {
		s.logger.Warn("load failed", "slot", slot, "error", err)
		return Output{System: []string{fmt.Sprintf("Load failed: %v", err)}}
	}
	s.lastCmd = ""
	s.logger.Info("game loaded", "slot", slot, "turn", snap.Turn, "from_session", snap.SessionID.String())
	return Output{
		System: []string{fmt.Sprintf("Game loaded from %s (turn %d).", slot, snap.Turn)},
		Lines:  s.Engine.Describe(),
	}
}

func (s *Session) list(ctx context.Context) Output {
	if s.Store == nil {
		return Output{System: []string{errNoStore.Error() + "."}}
	}
	infos, err := s.Store.List(ctx)
	if err != nil {
		return Output{System: []string{fmt.Sprintf("Listing saves failed: %v", err)}}
	}
	if len(infos) == 0 {
		return Output{System: []string{"No saved games."}}
	}
	lines := []string{"Saved games:"}
	for _, in := range infos {
		lines = append(lines, fmt.Sprintf("  %-12s turn %-4d %-18s %s",
			in.Slot, in.Turn, in.Room, in.SavedAt.Local().Format("2006-01-02 15:04")))
	}
	return Output{System: lines}
}

func (s *Session) delete(ctx context.Context, slot string) Output {
	if slot == "" {
		return Output{System: []string{"Usage: /delete <slot>"}}
	}
	if s.Store == nil {
		return Output{System: []string{fmt.Sprintf("Delete failed: %v", errNoStore)}}
	}
	if err := s.Store.Delete(ctx, slot); err != nil {
		if errors.Is(err, save.ErrSlotNotFound) {
			return Output{System: []string{fmt.Sprintf("No save named %s.", slot)}}
		}
		return Output{System: []string{fmt.Sprintf("Delete failed: %v", err)}}
	}
	return Output{System: []string{fmt.Sprintf("Deleted %s.", slot)}}
}

// Help lists the meta-commands and game verbs.
var Help = []string{
	"System:",
	"  /save [slot]    Save game (default: quicksave)",
	"  /load [slot]    Load game (default: quicksave)",
	"  /saves          List saved games",
	"  /delete <slot>  Delete a saved game",
	"  /quit           Exit game",
	"  /help           Show this help",
	"  /state          Debug: dump current state",
	"  /trace          Toggle debug trace output",
	"",
	"Game commands:",
	"  look (l)                 Describe the room",
	"  examine <thing> (x)      Look closely at something or a direction",
	"  go/walk <dir>            Move (or just type n/s/e/w/u/d)",
	"  take/get <item>          Pick something up",
	"  use <item>               Use something here or in your inventory",
	"  talk/speak <character>   Start a conversation",
	"  ask <character> about <topic>",
	"  1, 2, ... or leave       Choose a topic, or end the conversation",
	"  inventory (i)            Check what you're carrying",
	"  wait (z)                 Let time pass",
	"  again (g)                Repeat your last command",
}

// State dumps the disk's player-facing state for /state.
func State(d *types.Disk) []string {
	inv := make([]string, 0, len(d.Inventory))
	for _, it := range d.Inventory {
		inv = append(inv, it.ID)
	}
	out := []string{
		fmt.Sprintf("Turn: %d", d.Turn),
		fmt.Sprintf("Location: %s", d.RoomID),
		fmt.Sprintf("Inventory: %v", inv),
	}
	if len(d.Flags) > 0 {
		keys := make([]string, 0, len(d.Flags))
		for k := range d.Flags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		flags := make([]string, 0, len(keys))
		for _, k := range keys {
			flags = append(flags, fmt.Sprintf("%s=%v", k, d.Flags[k]))
		}
		out = append(out, "Flags: "+strings.Join(flags, " "))
	}
	if d.Conversant != "" {
		out = append(out, fmt.Sprintf("Talking to: %s", d.Conversant))
	}
	return out
}

// Trace formats a result's effects and events.
func Trace(res types.Result) []string {
	var lines []string
	if len(res.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(res.Effects)))
		for _, e := range res.Effects {
			lines = append(lines, "[trace]   "+effects.Describe(e))
		}
	}
	if len(res.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(res.Events)))
		for _, e := range res.Events {
			lines = append(lines, "[trace]   "+e.Type)
		}
	}
	return lines
}
