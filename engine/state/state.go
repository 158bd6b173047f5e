// Package state is the world store: read accessors and mutation primitives
// over the mutable disk. Every primitive is synchronous and either fully
// applies or returns an error without touching the disk.
package state

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nathoo/gamedisk/types"
)

// Inventory is the container name of the player's inventory.
const Inventory = "inventory"

const roomPrefix = "room:"

// RoomContainer returns the container name for a room's item list.
func RoomContainer(roomID string) string {
	return roomPrefix + roomID
}

// ErrNotFound is wrapped by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a content reference that does not exist on the disk.
// Lookups by ID fail loudly with this error; it is an authoring defect, not
// something the player caused.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Fold normalises a token for alias matching: trim, collapse inner
// whitespace and case-fold.
func Fold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// NewDisk creates an empty disk for the given game.
func NewDisk(game types.GameDef) *types.Disk {
	d := &types.Disk{Game: game, RoomID: game.Start}
	Normalize(d)
	return d
}

// Normalize fills nil maps and slices, derives default IDs and converts
// numeric flag values to float64 so that snapshots round-trip exactly.
func Normalize(d *types.Disk) {
	if d.Flags == nil {
		d.Flags = map[string]any{}
	}
	for k, v := range d.Flags {
		d.Flags[k] = normalizeValue(v)
	}
	if d.Inventory == nil {
		d.Inventory = []*types.Item{}
	}
	if d.CommandLog == nil {
		d.CommandLog = []string{}
	}
	if d.Templates == nil {
		d.Templates = map[string]*types.Item{}
	}
	for id, tpl := range d.Templates {
		if tpl.ID == "" {
			tpl.ID = id
		}
	}
	for _, r := range d.Rooms {
		if r.Flags == nil {
			r.Flags = map[string]any{}
		}
		for k, v := range r.Flags {
			r.Flags[k] = normalizeValue(v)
		}
		if r.Exits == nil {
			r.Exits = []*types.Exit{}
		}
		if r.Items == nil {
			r.Items = []*types.Item{}
		}
		for _, it := range r.Items {
			normalizeItem(it)
		}
	}
	for _, it := range d.Inventory {
		normalizeItem(it)
	}
	for _, c := range d.Characters {
		if c.ID == "" && len(c.Name) > 0 {
			c.ID = Slug(c.Name[0])
		}
		if c.Read == nil {
			c.Read = []string{}
		}
		for _, t := range c.Topics {
			if t.ID == "" {
				t.ID = Fold(t.Option)
			}
		}
	}
}

func normalizeItem(it *types.Item) {
	if it.ID == "" && len(it.Name) > 0 {
		it.ID = Slug(it.Name[0])
	}
}

// Slug turns a display name into an identifier: "Gold Coin" -> "gold_coin".
func Slug(name string) string {
	return strings.ReplaceAll(Fold(name), " ", "_")
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// MatchesAlias reports whether token names an entity with the given ID and
// alias set. Matching is case-insensitive.
func MatchesAlias(id string, names []string, token string) bool {
	t := Fold(token)
	if t == "" {
		return false
	}
	if Fold(id) == t || Slug(token) == strings.ToLower(id) {
		return true
	}
	for _, n := range names {
		if Fold(n) == t {
			return true
		}
	}
	return false
}

// GetRoom returns the room with the given ID.
func GetRoom(d *types.Disk, id string) (*types.Room, error) {
	for _, r := range d.Rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, &NotFoundError{Kind: "room", ID: id}
}

// CurrentRoom returns the room the player is in.
func CurrentRoom(d *types.Disk) (*types.Room, error) {
	return GetRoom(d, d.RoomID)
}

// SetRoom makes the room with the given ID current.
func SetRoom(d *types.Disk, id string) error {
	if _, err := GetRoom(d, id); err != nil {
		return err
	}
	d.RoomID = id
	return nil
}

// GetCharacter returns the first active character whose ID or alias matches.
func GetCharacter(d *types.Disk, aliasOrName string) *types.Character {
	for _, c := range d.Characters {
		if c.Inactive {
			continue
		}
		if MatchesAlias(c.ID, c.Name, aliasOrName) {
			return c
		}
	}
	return nil
}

// CharacterByID returns the character with the given ID, active or not.
func CharacterByID(d *types.Disk, id string) *types.Character {
	for _, c := range d.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CharactersIn returns the active characters located in a room, in
// declaration order.
func CharactersIn(d *types.Disk, roomID string) []*types.Character {
	var result []*types.Character
	for _, c := range d.Characters {
		if !c.Inactive && c.RoomID == roomID {
			result = append(result, c)
		}
	}
	return result
}

// GetItemInInventory returns the first inventory item matching the alias.
func GetItemInInventory(d *types.Disk, alias string) *types.Item {
	for _, it := range d.Inventory {
		if MatchesAlias(it.ID, it.Name, alias) {
			return it
		}
	}
	return nil
}

// HasItem returns true if the player carries an item with the given ID.
func HasItem(d *types.Disk, itemID string) bool {
	for _, it := range d.Inventory {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// GetExit returns the first exit whose direction aliases match dir.
func GetExit(dir string, exits []*types.Exit) *types.Exit {
	for _, ex := range exits {
		if MatchesAlias("", ex.Dir, dir) {
			return ex
		}
	}
	return nil
}

// VisibleItems returns the items of a room that are not hidden.
func VisibleItems(r *types.Room) []*types.Item {
	var result []*types.Item
	for _, it := range r.Items {
		if !it.IsHidden {
			result = append(result, it)
		}
	}
	return result
}

// container returns a pointer to the item slice named by container.
func container(d *types.Disk, name string) (*[]*types.Item, error) {
	if name == Inventory {
		return &d.Inventory, nil
	}
	if strings.HasPrefix(name, roomPrefix) {
		r, err := GetRoom(d, name[len(roomPrefix):])
		if err != nil {
			return nil, err
		}
		return &r.Items, nil
	}
	return nil, &NotFoundError{Kind: "container", ID: name}
}

// ItemsIn returns the items held by a container.
func ItemsIn(d *types.Disk, name string) ([]*types.Item, error) {
	items, err := container(d, name)
	if err != nil {
		return nil, err
	}
	return *items, nil
}

// Locate returns the container currently holding item (by identity).
func Locate(d *types.Disk, item *types.Item) (string, bool) {
	for _, it := range d.Inventory {
		if it == item {
			return Inventory, true
		}
	}
	for _, r := range d.Rooms {
		for _, it := range r.Items {
			if it == item {
				return RoomContainer(r.ID), true
			}
		}
	}
	return "", false
}

// AddItemTo appends item to a container. An item already held elsewhere is
// moved instead, so it never sits in two containers.
func AddItemTo(d *types.Disk, name string, item *types.Item) error {
	items, err := container(d, name)
	if err != nil {
		return err
	}
	if _, ok := Locate(d, item); ok {
		return MoveItem(d, item, name)
	}
	normalizeItem(item)
	*items = append(*items, item)
	return nil
}

// RemoveItemFrom removes every item matching pred from a container and
// returns the removed items.
func RemoveItemFrom(d *types.Disk, name string, pred func(*types.Item) bool) ([]*types.Item, error) {
	items, err := container(d, name)
	if err != nil {
		return nil, err
	}
	var kept, removed []*types.Item
	for _, it := range *items {
		if pred(it) {
			removed = append(removed, it)
		} else {
			kept = append(kept, it)
		}
	}
	if kept == nil {
		kept = []*types.Item{}
	}
	*items = kept
	return removed, nil
}

// MoveItem moves item from whichever container holds it to another. The item
// is never left in two containers.
func MoveItem(d *types.Disk, item *types.Item, to string) error {
	dst, err := container(d, to)
	if err != nil {
		return err
	}
	from, ok := Locate(d, item)
	if !ok {
		return &NotFoundError{Kind: "item", ID: item.ID}
	}
	if from == to {
		return nil
	}
	if _, err := RemoveItemFrom(d, from, func(it *types.Item) bool { return it == item }); err != nil {
		return err
	}
	*dst = append(*dst, item)
	return nil
}

// Spawn adds a fresh copy of a template item to a container.
func Spawn(d *types.Disk, templateID, to string) (*types.Item, error) {
	tpl, ok := d.Templates[templateID]
	if !ok {
		return nil, &NotFoundError{Kind: "template", ID: templateID}
	}
	item := *tpl
	item.Name = append([]string(nil), tpl.Name...)
	if err := AddItemTo(d, to, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetFlag returns the value of a disk flag, or nil if unset.
func GetFlag(d *types.Disk, key string) any {
	return d.Flags[key]
}

// FlagIsSet reports whether a flag holds a truthy value.
func FlagIsSet(d *types.Disk, key string) bool {
	return truthy(d.Flags[key])
}

// SetFlag sets a disk flag. A nil value deletes it.
func SetFlag(d *types.Disk, key string, value any) {
	if value == nil {
		delete(d.Flags, key)
		return
	}
	d.Flags[key] = normalizeValue(value)
}

// RoomFlag returns a per-room flag, or nil if unset.
func RoomFlag(r *types.Room, key string) any {
	return r.Flags[key]
}

// SetRoomFlag sets a per-room flag. A nil value deletes it.
func SetRoomFlag(r *types.Room, key string, value any) {
	if r.Flags == nil {
		r.Flags = map[string]any{}
	}
	if value == nil {
		delete(r.Flags, key)
		return
	}
	r.Flags[key] = normalizeValue(value)
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	default:
		return true
	}
}

// ExitPatch describes a change to an existing exit. Nil fields are left
// untouched; an empty Block string removes the block.
type ExitPatch struct {
	Block    *string
	ID       *string
	External *string
}

// MutateExit applies patch to the exit of r matching dir.
func MutateExit(r *types.Room, dir string, patch ExitPatch) error {
	ex := GetExit(dir, r.Exits)
	if ex == nil {
		return &NotFoundError{Kind: "exit", ID: r.ID + ":" + dir}
	}
	if patch.Block != nil {
		ex.Block = *patch.Block
	}
	if patch.ID != nil {
		ex.ID = *patch.ID
	}
	if patch.External != nil {
		ex.External = *patch.External
	}
	return nil
}

// AddExit appends an exit to a room.
func AddExit(r *types.Room, ex *types.Exit) {
	r.Exits = append(r.Exits, ex)
}

// SetExits replaces a room's exit list entirely.
func SetExits(r *types.Room, exits []*types.Exit) {
	if exits == nil {
		exits = []*types.Exit{}
	}
	r.Exits = exits
}

// AddCharacter places a character in the world. A previously removed
// character with the same ID is reactivated instead of duplicated.
func AddCharacter(d *types.Disk, c *types.Character) {
	if c.ID == "" && len(c.Name) > 0 {
		c.ID = Slug(c.Name[0])
	}
	if existing := CharacterByID(d, c.ID); existing != nil {
		existing.Inactive = false
		if c.RoomID != "" {
			existing.RoomID = c.RoomID
		}
		return
	}
	if c.Read == nil {
		c.Read = []string{}
	}
	for _, t := range c.Topics {
		if t.ID == "" {
			t.ID = Fold(t.Option)
		}
	}
	d.Characters = append(d.Characters, c)
}

// RemoveCharacter takes a character out of the world.
func RemoveCharacter(d *types.Disk, id string) error {
	c := CharacterByID(d, id)
	if c == nil {
		return &NotFoundError{Kind: "character", ID: id}
	}
	c.Inactive = true
	return nil
}

// MoveCharacter relocates a character.
func MoveCharacter(d *types.Disk, id, roomID string) error {
	c := CharacterByID(d, id)
	if c == nil {
		return &NotFoundError{Kind: "character", ID: id}
	}
	if _, err := GetRoom(d, roomID); err != nil {
		return err
	}
	c.RoomID = roomID
	return nil
}
