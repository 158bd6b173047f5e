package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/engine/hooks"
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

// validate checks a compiled disk. Loader-specific problems (duplicate ids,
// unknown item references, unreachable rooms) are reported together with
// the engine's referential checks so an author sees every error at once.
func validate(d *types.Disk, reg *hooks.Registry, missing ...string) error {
	ve := &ValidationError{}
	ve.Errors = append(ve.Errors, missing...)

	chars := map[string]bool{}
	for _, c := range d.Characters {
		if chars[c.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("character %q declared twice", c.ID))
		}
		chars[c.ID] = true
	}

	// Warnings: rooms nothing leads to.
	reachable := map[string]bool{d.Game.Start: true}
	for _, r := range d.Rooms {
		for _, ex := range r.Exits {
			reachable[ex.ID] = true
		}
	}
	for _, r := range d.Rooms {
		if !reachable[r.ID] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"room %q has no exits leading to it (a hook must add one)", r.ID))
		}
	}

	// Warnings: templates never placed.
	placed := map[string]bool{}
	for _, r := range d.Rooms {
		for _, it := range r.Items {
			placed[it.ID] = true
		}
	}
	for _, it := range d.Inventory {
		placed[it.ID] = true
	}
	for id := range d.Templates {
		if !placed[id] {
			slog.Debug("item template not placed; it can only be spawned", "item", id)
		}
	}

	var engineErr *engine.ValidationError
	if err := engine.Validate(d, reg); errors.As(err, &engineErr) {
		ve.Errors = append(ve.Errors, engineErr.Errors...)
	} else if err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	for _, w := range ve.Warnings {
		slog.Warn("disk validation", "warning", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
