// Package disks is the registry of disks built into the binary.
package disks

import (
	"sort"

	"github.com/nathoo/gamedisk/disks/tower"
	"github.com/nathoo/gamedisk/engine"
)

var builtin = map[string]engine.Factory{
	tower.Name: tower.New,
}

// Get returns the factory of a built-in disk.
func Get(name string) (engine.Factory, bool) {
	f, ok := builtin[name]
	return f, ok
}

// Names lists the built-in disks, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
