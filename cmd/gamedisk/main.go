// Gamedisk plays interactive-fiction disks: the built-in ones or a directory
// of Lua source.
// Usage: gamedisk [--version] [--disks] [--plain] [--script <file>] [--trace] <disk>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nathoo/gamedisk/cli"
	"github.com/nathoo/gamedisk/config"
	"github.com/nathoo/gamedisk/disks"
	"github.com/nathoo/gamedisk/engine"
	"github.com/nathoo/gamedisk/loader"
	"github.com/nathoo/gamedisk/logger"
	"github.com/nathoo/gamedisk/session"
	"github.com/nathoo/gamedisk/storage"
	"github.com/nathoo/gamedisk/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: gamedisk [--version] [--disks] [--plain] [--script <file>] [--trace] <disk name or directory>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	plain := false
	trace := false
	var diskArg string
	var scriptFile string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("gamedisk %s (commit %s, built %s)\n", version, commit, date)
			return 0
		case "--disks":
			fmt.Println(strings.Join(disks.Names(), "\n"))
			return 0
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--script requires a file path")
				return 1
			}
			i++
			scriptFile = args[i]
		default:
			if diskArg == "" {
				diskArg = args[i]
			}
		}
	}

	if diskArg == "" {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		return 1
	}
	log := logger.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.LoadDisk(factory(diskArg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading disk: %v\n", err)
		return 1
	}
	defer eng.Close()

	store, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		// Play on without saves rather than refusing to start.
		log.Warn("save store unavailable", "store", cfg.Store, "error", err)
		store, closeStore = nil, func() error { return nil }
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing save store", "error", err)
		}
	}()

	s := session.New(eng, store, log)
	s.Trace = trace
	log.Debug("session started", "session", s.ID.String(), "disk", diskArg, "store", cfg.Store)

	// Script mode: read the file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			return 1
		}
		defer f.Close()
		c := cli.New(s)
		c.In = f
		c.EchoInput = true
		c.Run(ctx)
		return 0
	}

	// Use the plain CLI if asked to or stdout is not a terminal.
	if plain || cfg.Plain || !isTerminal() {
		cli.New(s).Run(ctx)
		return 0
	}

	if err := tui.Run(ctx, s); err != nil {
		slog.Error("tui", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// factory resolves a disk argument: a built-in disk name, otherwise a
// directory of Lua files.
func factory(arg string) engine.Factory {
	if f, ok := disks.Get(arg); ok {
		if _, err := os.Stat(arg); err != nil {
			return f
		}
	}
	return loader.Factory(arg)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
