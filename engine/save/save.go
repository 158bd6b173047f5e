// Package save implements snapshot serialization of the disk and the store
// contract that persistence backends implement.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// FormatVersion is the snapshot layout version written by Encode.
const FormatVersion = 1

// Snapshot is the serializable save format: the whole disk plus metadata.
type Snapshot struct {
	Version     int         `json:"version" yaml:"version"`
	Game        string      `json:"game" yaml:"game"`
	GameVersion string      `json:"game_version,omitempty" yaml:"game_version,omitempty"`
	SessionID   uuid.UUID   `json:"session_id" yaml:"session_id"`
	Turn        int         `json:"turn" yaml:"turn"`
	SavedAt     time.Time   `json:"saved_at" yaml:"saved_at"`
	Disk        *types.Disk `json:"disk" yaml:"disk"`
}

// Info summarizes a stored snapshot for listings.
type Info struct {
	Slot    string
	Game    string
	Room    string
	Turn    int
	SavedAt time.Time
}

// Store persists snapshots in named slots.
type Store interface {
	Save(ctx context.Context, slot string, s *Snapshot) error
	Load(ctx context.Context, slot string) (*Snapshot, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, slot string) error
}

// ErrSlotNotFound is returned by Load and Delete for an empty slot.
var ErrSlotNotFound = errors.New("save slot not found")

// FailedError reports a persistence failure. The in-memory game is never
// touched when a store operation fails.
type FailedError struct {
	Op   string // save, load, list, delete
	Slot string
	Err  error
}

func (e *FailedError) Error() string {
	if e.Slot == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed (slot %q): %v", e.Op, e.Slot, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Fail wraps err as a FailedError unless it is nil.
func Fail(op, slot string, err error) error {
	if err == nil {
		return nil
	}
	return &FailedError{Op: op, Slot: slot, Err: err}
}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CheckSlot rejects slot names that are not safe as file names or keys.
func CheckSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("invalid slot name %q: use letters, digits, '-' or '_'", slot)
	}
	return nil
}

// New wraps a disk snapshot with metadata.
func New(d *types.Disk, session uuid.UUID) *Snapshot {
	return &Snapshot{
		Version:     FormatVersion,
		Game:        d.Game.Title,
		GameVersion: d.Game.Version,
		SessionID:   session,
		Turn:        d.Turn,
		SavedAt:     time.Now().UTC().Truncate(time.Second),
		Disk:        d,
	}
}

// Info returns the listing summary for a snapshot stored in slot.
func (s *Snapshot) Info(slot string) Info {
	info := Info{Slot: slot, Game: s.Game, Turn: s.Turn, SavedAt: s.SavedAt}
	if s.Disk != nil {
		info.Room = s.Disk.RoomID
	}
	return info
}

// Encode serializes a snapshot to indented JSON.
func Encode(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode deserializes JSON bytes into a snapshot and normalizes the disk.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if err := Check(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Check verifies a decoded snapshot and normalizes its disk. Stores that use
// their own encoding call it after decoding.
func Check(s *Snapshot) error {
	if s.Version != FormatVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Disk == nil {
		return errors.New("snapshot has no disk")
	}
	state.Normalize(s.Disk)
	return nil
}

// Compatible reports whether a snapshot was taken from the given game.
func Compatible(s *Snapshot, game types.GameDef) error {
	if s.Game != game.Title {
		return fmt.Errorf("snapshot is for %q, not %q", s.Game, game.Title)
	}
	return nil
}
