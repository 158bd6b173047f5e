// Package filestore keeps save slots as files in a directory, one file per
// slot, in JSON or YAML.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/gamedisk/engine/save"
)

// Format selects the on-disk encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown save format %q", s)
}

// Store is a directory of save files.
type Store struct {
	dir    string
	format Format
	logger *slog.Logger
}

var _ save.Store = (*Store)(nil)

// Open creates dir if needed and returns a store writing the given format.
func Open(dir string, format Format, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("save directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: filepath.Clean(dir), format: format, logger: logger}, nil
}

func (s *Store) path(slot string) string {
	return filepath.Join(s.dir, slot+"."+string(s.format))
}

// Save writes the snapshot atomically: a temp file is written and renamed
// over the slot, so a failed save never leaves a truncated file behind.
func (s *Store) Save(ctx context.Context, slot string, snap *save.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return save.Fail("save", slot, err)
	}
	if err := save.CheckSlot(slot); err != nil {
		return save.Fail("save", slot, err)
	}

	data, err := s.encode(snap)
	if err != nil {
		return save.Fail("save", slot, err)
	}

	tmp, err := os.CreateTemp(s.dir, slot+".*.tmp")
	if err != nil {
		return save.Fail("save", slot, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return save.Fail("save", slot, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return save.Fail("save", slot, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return save.Fail("save", slot, err)
	}
	if err := os.Rename(tmpName, s.path(slot)); err != nil {
		cleanup()
		return save.Fail("save", slot, err)
	}

	s.logger.Debug("saved game", "slot", slot, "path", s.path(slot), "turn", snap.Turn)
	return nil
}

// Load reads a slot.
func (s *Store) Load(ctx context.Context, slot string) (*save.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, save.Fail("load", slot, err)
	}
	if err := save.CheckSlot(slot); err != nil {
		return nil, save.Fail("load", slot, err)
	}
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("slot %q: %w", slot, save.ErrSlotNotFound)
	}
	if err != nil {
		return nil, save.Fail("load", slot, err)
	}
	snap, err := s.decode(data)
	if err != nil {
		return nil, save.Fail("load", slot, err)
	}
	return snap, nil
}

// List returns every readable slot, sorted by name. Unreadable files are
// logged and skipped.
func (s *Store) List(ctx context.Context) ([]save.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, save.Fail("list", "", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, save.Fail("list", "", err)
	}
	suffix := "." + string(s.format)

	var infos []save.Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		slot := strings.TrimSuffix(e.Name(), suffix)
		if save.CheckSlot(slot) != nil {
			continue
		}
		snap, err := s.Load(ctx, slot)
		if err != nil {
			s.logger.Warn("skipping unreadable save", "slot", slot, "error", err)
			continue
		}
		infos = append(infos, snap.Info(slot))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Slot < infos[j].Slot })
	return infos, nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return save.Fail("delete", slot, err)
	}
	if err := save.CheckSlot(slot); err != nil {
		return save.Fail("delete", slot, err)
	}
	err := os.Remove(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("slot %q: %w", slot, save.ErrSlotNotFound)
	}
	return save.Fail("delete", slot, err)
}

func (s *Store) encode(snap *save.Snapshot) ([]byte, error) {
	if s.format == YAML {
		return yaml.Marshal(snap)
	}
	return save.Encode(snap)
}

func (s *Store) decode(data []byte) (*save.Snapshot, error) {
	if s.format != YAML {
		return save.Decode(data)
	}
	var snap save.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if err := save.Check(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
