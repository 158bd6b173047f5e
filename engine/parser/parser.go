// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/gamedisk/types"
)

// Canonical verbs understood by the engine.
const (
	Look      = "look"
	Go        = "go"
	Take      = "take"
	Use       = "use"
	Talk      = "talk"
	Inventory = "inventory"
	Help      = "help"
	Wait      = "wait"
	Leave     = "leave"
)

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
}

// DirectionForms returns token followed by its abbreviated or expanded
// counterpart, if it has one. "n" gives [n north]; "north" gives [north n].
func DirectionForms(token string) []string {
	t := strings.ToLower(strings.TrimSpace(token))
	if full, ok := directionExpansions[t]; ok {
		return []string{token, full}
	}
	for abbr, full := range directionExpansions {
		if full == t {
			return []string{token, abbr}
		}
	}
	return []string{token}
}

// Full direction names that are standalone shortcuts for "go <dir>".
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true, "in": true, "out": true,
}

var verbAliases = map[string]string{
	// Look
	"l":        Look,
	"x":        Look,
	"examine":  Look,
	"inspect":  Look,
	"check":    Look,
	"study":    Look,
	"observe":  Look,
	"describe": Look,
	"read":     Look,
	"search":   Look,

	// Movement
	"walk":    Go,
	"run":     Go,
	"move":    Go,
	"head":    Go,
	"proceed": Go,
	"enter":   Go,
	"travel":  Go,
	"climb":   Go,

	// Take
	"get":   Take,
	"grab":  Take,
	"carry": Take,

	// Use
	"push":     Use,
	"press":    Use,
	"pull":     Use,
	"open":     Use,
	"touch":    Use,
	"activate": Use,
	"turn":     Use,
	"insert":   Use,
	"place":    Use,
	"put":      Use,
	"drink":    Use,
	"play":     Use,

	// Talk
	"ask":      Talk,
	"speak":    Talk,
	"chat":     Talk,
	"converse": Talk,
	"greet":    Talk,

	// Miscellaneous
	"inv": Inventory,
	"i":   Inventory,
	"h":   Help,
	"?":   Help,
	"z":   Wait,

	// Conversation
	"bye":       Leave,
	"goodbye":   Leave,
	"nevermind": Leave,
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "into": true,
	"about": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Direction shortcut: bare "n", "south", etc. → go <direction>
	if len(words) == 1 {
		if dir, ok := directionExpansions[words[0]]; ok {
			return types.Intent{Verb: Go, Object: dir}
		}
		if directionNames[words[0]] {
			return types.Intent{Verb: Go, Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// "go n" and "look nw" name a direction.
	if (verb == Go || verb == Look) && len(rest) == 1 {
		if dir, ok := directionExpansions[rest[0]]; ok {
			return types.Intent{Verb: verb, Object: dir}
		}
	}

	// Movement takes the whole phrase; "go in" and "enter the portal" both
	// name an exit.
	if verb == Go {
		return types.Intent{Verb: verb, Object: strings.Join(rest, " ")}
	}

	object, target := splitOnPreposition(rest)
	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "look at", "pick up", "talk to" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look", "l":
		if words[1] == "at" || words[1] == "in" || words[1] == "under" || words[1] == "into" {
			return append([]string{Look}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{Take}, words[2:]...)
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{Talk}, words[2:]...)
		}
	case "go", "walk", "run":
		if words[1] == "to" || words[1] == "through" {
			return append([]string{Go}, words[2:]...)
		}
	case "turn", "switch":
		if words[1] == "on" || words[1] == "off" {
			return append([]string{Use}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
