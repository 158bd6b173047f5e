package parser

import (
	"strings"
	"testing"

	"github.com/nathoo/gamedisk/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{name: "empty string", input: "", want: types.Intent{}},
		{name: "whitespace only", input: "   ", want: types.Intent{}},

		// Basic verbs
		{name: "look", input: "look", want: types.Intent{Verb: "look"}},
		{name: "inventory", input: "inventory", want: types.Intent{Verb: "inventory"}},
		{name: "help", input: "help", want: types.Intent{Verb: "help"}},
		{name: "bye → leave", input: "bye", want: types.Intent{Verb: "leave"}},

		// Verb aliases
		{name: "l → look", input: "l", want: types.Intent{Verb: "look"}},
		{name: "i → inventory", input: "i", want: types.Intent{Verb: "inventory"}},
		{name: "x fountain → look fountain", input: "x fountain", want: types.Intent{Verb: "look", Object: "fountain"}},
		{name: "examine → look", input: "examine coins", want: types.Intent{Verb: "look", Object: "coins"}},
		{name: "get key → take key", input: "get key", want: types.Intent{Verb: "take", Object: "key"}},
		{name: "push lever → use lever", input: "push lever", want: types.Intent{Verb: "use", Object: "lever"}},

		// Direction shortcuts
		{name: "n → go north", input: "n", want: types.Intent{Verb: "go", Object: "north"}},
		{name: "nw → go northwest", input: "nw", want: types.Intent{Verb: "go", Object: "northwest"}},
		{name: "u → go up", input: "u", want: types.Intent{Verb: "go", Object: "up"}},
		{name: "bare direction", input: "west", want: types.Intent{Verb: "go", Object: "west"}},
		{name: "go s", input: "go s", want: types.Intent{Verb: "go", Object: "south"}},
		{name: "go multi-word", input: "go through the portal", want: types.Intent{Verb: "go", Object: "portal"}},
		{name: "enter → go", input: "enter portal", want: types.Intent{Verb: "go", Object: "portal"}},
		{name: "look direction", input: "look nw", want: types.Intent{Verb: "look", Object: "northwest"}},

		// Multi-word verbs
		{name: "look at", input: "look at the fountain", want: types.Intent{Verb: "look", Object: "fountain"}},
		{name: "pick up", input: "pick up gold coin", want: types.Intent{Verb: "take", Object: "gold coin"}},
		{name: "talk to", input: "talk to the archivist", want: types.Intent{Verb: "talk", Object: "archivist"}},

		// Prepositions
		{name: "use on", input: "use gold coin on statue", want: types.Intent{Verb: "use", Object: "gold coin", Target: "statue"}},
		{name: "ask about", input: "ask archivist about tower", want: types.Intent{Verb: "talk", Object: "archivist", Target: "tower"}},

		// Case and articles
		{name: "uppercase", input: "TAKE The Ember Token", want: types.Intent{Verb: "take", Object: "ember token"}},
		{name: "extra spaces", input: "  use   dais  ", want: types.Intent{Verb: "use", Object: "dais"}},

		// Unknown verbs pass through
		{name: "unknown verb", input: "dance wildly", want: types.Intent{Verb: "dance", Object: "wildly"}},
		{name: "numeric", input: "2", want: types.Intent{Verb: "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirectionForms(t *testing.T) {
	tests := []struct {
		token string
		want  []string
	}{
		{"n", []string{"n", "north"}},
		{"north", []string{"north", "n"}},
		{"Up", []string{"Up", "u"}},
		{"portal", []string{"portal"}},
	}
	for _, tt := range tests {
		got := DirectionForms(tt.token)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("DirectionForms(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}
