// Package tui provides a Bubble Tea terminal UI for a game session.
package tui

import "strings"

// History is a bounded command history with cursor navigation. When the
// input line holds text, navigation only visits entries starting with it.
type History struct {
	entries []string
	max     int
	cursor  int    // -1 = not navigating
	prefix  string // filter captured when navigation started
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a command. Repeating the latest command is a no-op.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev moves to the previous matching entry. typed is the current input and
// only matters when navigation starts.
func (h *History) Prev(typed string) (string, bool) {
	start := h.cursor
	if start == -1 {
		h.prefix = typed
		start = len(h.entries)
	}
	for i := start - 1; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	if h.cursor >= 0 {
		return h.entries[h.cursor], true
	}
	return "", false
}

// Next moves to the next matching entry. Past the newest it stops navigating
// and returns the text typed before navigation, with ok false.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	for i := h.cursor + 1; i < len(h.entries); i++ {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	typed := h.prefix
	h.ResetCursor()
	return typed, false
}

// ResetCursor leaves navigation.
func (h *History) ResetCursor() {
	h.cursor = -1
	h.prefix = ""
}

// Len returns the number of stored commands.
func (h *History) Len() int { return len(h.entries) }
