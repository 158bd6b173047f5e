// Package cli provides the line-oriented front end: terminal I/O, script
// playback and meta-command output for a game session.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/gamedisk/session"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI on stdin and stdout.
func New(s *session.Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run prints the opening, then loops: prompt → input → dispatch → output.
// It returns when input ends, the player quits, or ctx is cancelled.
func (c *CLI) Run(ctx context.Context) {
	c.printLines(c.Session.Engine.Opening.Output)

	scanner := bufio.NewScanner(c.In)
	for ctx.Err() == nil {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		out := c.Session.Handle(ctx, input)
		c.printLines(out.Lines)
		for _, line := range out.System {
			c.printSystem(line)
		}
		if out.Quit {
			return
		}
	}
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

// printSystem brackets front-end messages; blank lines stay blank.
func (c *CLI) printSystem(text string) {
	if strings.TrimSpace(text) == "" {
		c.printLine("")
		return
	}
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
