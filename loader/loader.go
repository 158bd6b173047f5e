// Package loader builds disks from Lua source. Hook fields may hold inline
// functions; these are registered under stable names derived from their
// owner ("item:lamp.onUse") so a saved disk resolves the same handlers when
// it is restored into a freshly loaded one.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/script"
	"github.com/nathoo/gamedisk/types"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game       *lua.LTable
	rooms      []rawDef
	items      []rawDef
	characters []rawDef
	handlers   []rawHandler
	listeners  []rawListener
}

// rawDef holds a curried constructor's id and table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// rawHandler is a named handler declared with Handler "name" (function).
type rawHandler struct {
	name string
	fn   *lua.LFunction
}

// rawListener is an On("event", handler) declaration.
type rawListener struct {
	event string
	value lua.LValue
}

// Load reads all .lua files from dir, game.lua first and the rest in
// alphabetical order, and returns the disk and the registry holding its
// handlers. The Lua state stays alive until the registry is closed.
func Load(dir string) (*types.Disk, *hooks.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading disk directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	rt := script.New()
	coll := &collector{}
	registerAPI(rt.L, coll)

	for _, f := range luaFiles {
		if err := rt.DoFile(filepath.Join(dir, f)); err != nil {
			rt.Close()
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	c := newCompiler(rt)
	d, err := c.compile(coll)
	if err != nil {
		rt.Close()
		return nil, nil, fmt.Errorf("compiling disk: %w", err)
	}
	reg := c.reg
	if err := validate(d, reg, c.missing...); err != nil {
		rt.Close()
		return nil, nil, err
	}
	reg.OnClose(rt.Close)

	slog.Debug("disk loaded", "dir", dir, "files", len(luaFiles),
		"rooms", len(d.Rooms), "handlers", len(reg.Names()))
	return d, reg, nil
}

// Factory returns an engine.Factory that loads a fresh disk from dir on
// every call.
func Factory(dir string) engine.Factory {
	return func() (*types.Disk, *hooks.Registry, error) {
		return Load(dir)
	}
}

// sortedLuaFiles returns .lua files with game.lua first and the rest sorted
// alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
