// Package hooks defines the handler contract for executable disk content.
// Handlers are named functions registered against entity IDs and invoked
// with a capability Context exposing only the permitted world operations.
package hooks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// ErrCancel is returned by a handler to veto the engine's default action
// (for example the inventory move that follows onTake). It is not an error
// condition.
var ErrCancel = errors.New("hooks: default action cancelled")

// Hook names as they appear on entities.
const (
	OnLoad     = "onLoad"
	OnEnter    = "onEnter"
	OnLook     = "onLook"
	OnUse      = "onUse"
	OnTake     = "onTake"
	OnSelected = "onSelected"
	OnEvent    = "onEvent"
)

// Target identifies the entity a handler was invoked for.
type Target struct {
	Hook      string
	Room      *types.Room
	Item      *types.Item
	Character *types.Character
	Topic     *types.Topic
	Event     *types.Event
}

// Context is the capability object handed to every handler. Mutations are
// applied immediately, in call order, and may touch any room, not just the
// current one.
type Context interface {
	// Println appends a line to the player-visible transcript.
	Println(text string)

	Room(id string) (*types.Room, error)
	CurrentRoom() *types.Room
	Character(aliasOrName string) *types.Character
	InventoryItem(alias string) *types.Item
	Exit(roomID, direction string) (*types.Exit, error)
	HasItem(itemID string) bool
	Flag(key string) any
	FlagIsSet(key string) bool
	RoomFlag(roomID, key string) (any, error)

	AddItem(container string, item *types.Item) error
	RemoveItem(container string, match func(*types.Item) bool) ([]*types.Item, error)
	MoveItem(item *types.Item, container string) error
	Spawn(templateID, container string) (*types.Item, error)
	Reveal(roomID, itemID string) error
	SetFlag(key string, value any)
	SetRoomFlag(roomID, key string, value any) error
	MutateExit(roomID, direction string, patch state.ExitPatch) error
	Unblock(roomID, direction string) error
	Block(roomID, direction, message string) error
	AddExit(roomID string, exit *types.Exit) error
	SetExits(roomID string, exits []*types.Exit) error
	AddCharacter(c *types.Character)
	RemoveCharacter(id string) error
	MoveCharacter(id, roomID string) error

	// GoDir moves the player as if they had typed the direction.
	GoDir(direction string) error
	EndConversation()
}

// Handler is a behavior attached to an entity hook.
type Handler func(ctx Context, t Target) error

// Registry maps handler names to handlers. It also owns whatever backs
// them, such as a Lua state, and releases it on Close.
type Registry struct {
	handlers map[string]Handler
	closers  []func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds a handler under name, replacing any previous one.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// OnClose adds a release function run by Close.
func (r *Registry) OnClose(fn func()) {
	r.closers = append(r.closers, fn)
}

// Close runs the release functions in reverse order of registration. Calling
// it again does nothing. Handlers must not be invoked afterwards.
func (r *Registry) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns all registered handler names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named handler. An empty name is a no-op; an unregistered
// name is an authoring defect.
func (r *Registry) Invoke(name string, ctx Context, t Target) error {
	if name == "" {
		return nil
	}
	h, ok := r.handlers[name]
	if !ok {
		return &state.NotFoundError{Kind: "handler", ID: name}
	}
	if err := h(ctx, t); err != nil {
		if errors.Is(err, ErrCancel) {
			return err
		}
		return fmt.Errorf("%s handler %q: %w", t.Hook, name, err)
	}
	return nil
}

// ByRoom builds a handler that dispatches on the player's current room. It
// replaces if/else chains keyed on the room inside shared item handlers.
// fallback runs when no entry matches; it may be nil.
func ByRoom(table map[string]Handler, fallback Handler) Handler {
	return func(ctx Context, t Target) error {
		if room := ctx.CurrentRoom(); room != nil {
			if h, ok := table[room.ID]; ok {
				return h(ctx, t)
			}
		}
		if fallback != nil {
			return fallback(ctx, t)
		}
		return nil
	}
}

// Say returns a handler that prints fixed lines.
func Say(lines ...string) Handler {
	return func(ctx Context, _ Target) error {
		for _, l := range lines {
			ctx.Println(l)
		}
		return nil
	}
}
