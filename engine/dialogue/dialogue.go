// Package dialogue implements character topic eligibility and selection.
package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// LeaveWords end a conversation explicitly.
var LeaveWords = []string{"leave", "bye", "goodbye", "nevermind", "exit"}

// IsLeave reports whether input is an explicit request to end a conversation.
func IsLeave(input string) bool {
	in := state.Fold(input)
	for _, w := range LeaveWords {
		if in == w {
			return true
		}
	}
	return false
}

// IsRead reports whether the character's topic has been selected before.
func IsRead(c *types.Character, topicID string) bool {
	for _, id := range c.Read {
		if id == topicID {
			return true
		}
	}
	return false
}

// MarkRead records a topic as read. Recording twice is a no-op.
func MarkRead(c *types.Character, topicID string) {
	if !IsRead(c, topicID) {
		c.Read = append(c.Read, topicID)
	}
}

// Eligible returns the topics currently offered, in declaration order. A topic
// is offered when every prereq has been read and it has not been consumed.
func Eligible(c *types.Character) []*types.Topic {
	var result []*types.Topic
	for _, t := range c.Topics {
		if t.RemoveOnRead && IsRead(c, t.ID) {
			continue
		}
		if !prereqsMet(c, t) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func prereqsMet(c *types.Character, t *types.Topic) bool {
	for _, p := range t.Prereqs {
		if !IsRead(c, p) {
			return false
		}
	}
	return true
}

// Find selects an eligible topic by 1-based menu number, keyword or option
// text.
func Find(c *types.Character, token string) (*types.Topic, bool) {
	topics := Eligible(c)
	tok := strings.TrimSpace(token)
	if n, err := strconv.Atoi(tok); err == nil {
		if n >= 1 && n <= len(topics) {
			return topics[n-1], true
		}
		return nil, false
	}
	folded := state.Fold(tok)
	if folded == "" {
		return nil, false
	}
	for _, t := range topics {
		if t.ID == folded || state.Fold(t.ID) == folded || state.Fold(t.Option) == folded {
			return t, true
		}
	}
	return nil, false
}

// Menu renders the eligible topics as numbered lines.
func Menu(c *types.Character) []string {
	topics := Eligible(c)
	lines := make([]string, 0, len(topics))
	for i, t := range topics {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Option))
	}
	return lines
}

// IDs returns the IDs of the given topics.
func IDs(topics []*types.Topic) []string {
	ids := make([]string, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}
	return ids
}
