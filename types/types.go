// Package types defines the shared data structures for the gamedisk engine.
// This package contains only type definitions. No logic, no methods.
package types

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
}

// GameDef holds disk metadata.
type GameDef struct {
	Title   string `json:"title" yaml:"title"`
	Author  string `json:"author,omitempty" yaml:"author,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Start   string `json:"start" yaml:"start"` // starting room ID
	Intro   string `json:"intro,omitempty" yaml:"intro,omitempty"`
}

// Exit is a directed, possibly blocked edge out of a room.
type Exit struct {
	Dir      []string `json:"dir" yaml:"dir"`                               // alias tokens, first is canonical
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`             // target room ID
	External string   `json:"external,omitempty" yaml:"external,omitempty"` // out-of-world marker (URL)
	Block    string   `json:"block,omitempty" yaml:"block,omitempty"`       // non-empty = visible but impassable
}

// Item is an object that lives in exactly one container: a room or the inventory.
// Hook fields hold handler names resolved against the registry at dispatch time.
type Item struct {
	ID         string   `json:"id" yaml:"id"`
	Name       []string `json:"name" yaml:"name"` // alias set, first is canonical
	Desc       string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	IsTakeable bool     `json:"isTakeable,omitempty" yaml:"isTakeable,omitempty"`
	IsHidden   bool     `json:"isHidden,omitempty" yaml:"isHidden,omitempty"`
	OnLook     string   `json:"onLook,omitempty" yaml:"onLook,omitempty"`
	OnUse      string   `json:"onUse,omitempty" yaml:"onUse,omitempty"`
	OnTake     string   `json:"onTake,omitempty" yaml:"onTake,omitempty"`
}

// Room is a navigable location node.
type Room struct {
	ID      string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Desc    string         `json:"desc,omitempty" yaml:"desc,omitempty"`
	Exits   []*Exit        `json:"exits" yaml:"exits"`
	Items   []*Item        `json:"items" yaml:"items"`
	Flags   map[string]any `json:"flags" yaml:"flags"` // per-room one-shot guards
	OnEnter string         `json:"onEnter,omitempty" yaml:"onEnter,omitempty"`
	OnLook  string         `json:"onLook,omitempty" yaml:"onLook,omitempty"`
	Visits  int            `json:"visits,omitempty" yaml:"visits,omitempty"`
}

// Topic is one branch of a character's dialogue tree.
type Topic struct {
	ID           string   `json:"id" yaml:"id"` // keyword referenced by prereqs
	Option       string   `json:"option" yaml:"option"`
	Line         string   `json:"line" yaml:"line"`
	OnSelected   string   `json:"onSelected,omitempty" yaml:"onSelected,omitempty"`
	Prereqs      []string `json:"prereqs,omitempty" yaml:"prereqs,omitempty"`
	RemoveOnRead bool     `json:"removeOnRead,omitempty" yaml:"removeOnRead,omitempty"`
}

// Character is a talkable entity. Inactive characters have been removed from
// the world and are filtered out of every query.
type Character struct {
	ID       string   `json:"id" yaml:"id"`
	Name     []string `json:"name" yaml:"name"`
	RoomID   string   `json:"roomId" yaml:"roomId"`
	Desc     string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	OnTalk   string   `json:"onTalk,omitempty" yaml:"onTalk,omitempty"` // entry banner
	Topics   []*Topic `json:"topics" yaml:"topics"`
	Read     []string `json:"read" yaml:"read"` // topic IDs already read, in order
	Inactive bool     `json:"inactive,omitempty" yaml:"inactive,omitempty"`
}

// Disk is the complete mutable world and player state for one playthrough.
// It is the unit of persistence.
type Disk struct {
	Game         GameDef             `json:"game" yaml:"game"`
	RoomID       string              `json:"roomId" yaml:"roomId"`
	Rooms        []*Room             `json:"rooms" yaml:"rooms"`
	Inventory    []*Item             `json:"inventory" yaml:"inventory"`
	Characters   []*Character        `json:"characters" yaml:"characters"`
	Templates    map[string]*Item    `json:"templates,omitempty" yaml:"templates,omitempty"` // spawnable items
	Flags        map[string]any      `json:"flags" yaml:"flags"`
	Conversant   string              `json:"conversant,omitempty" yaml:"conversant,omitempty"`     // character ID
	Conversation []string            `json:"conversation,omitempty" yaml:"conversation,omitempty"` // offered topic IDs
	Listeners    map[string][]string `json:"listeners,omitempty" yaml:"listeners,omitempty"`       // event type → handler names
	OnLoad       string              `json:"onLoad,omitempty" yaml:"onLoad,omitempty"`
	Ended        bool                `json:"ended,omitempty" yaml:"ended,omitempty"`
	Terminus     string              `json:"terminus,omitempty" yaml:"terminus,omitempty"`
	Turn         int                 `json:"turn" yaml:"turn"`
	CommandLog   []string            `json:"commandLog" yaml:"commandLog"`
}
