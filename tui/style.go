package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleRoomName = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	styleListed = lipgloss.NewStyle().
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleMenu = lipgloss.NewStyle().
			Foreground(lipgloss.Color("180"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindRoomName
	kindListing // "You see:" and "Here:"
	kindExits
	kindDialogue
	kindMenu
	kindRefusal
)

var menuLine = regexp.MustCompile(`^\d+\. `)

// classifyLine determines what kind of game output line this is. roomName
// is the name of the current room.
func classifyLine(line, roomName string) lineKind {
	switch {
	case roomName != "" && line == roomName:
		return kindRoomName
	case strings.HasPrefix(line, "You see:"), strings.HasPrefix(line, "Here:"):
		return kindListing
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case menuLine.MatchString(line):
		return kindMenu
	case strings.HasPrefix(line, "You don't see"),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "I don't know how to"):
		return kindRefusal
	case strings.Contains(line, `"`):
		return kindDialogue
	default:
		return kindNarrative
	}
}

// renderLine applies the style for a line kind.
func renderLine(line string, kind lineKind) string {
	switch kind {
	case kindRoomName:
		return styleRoomName.Render(line)
	case kindListing:
		label, rest, ok := strings.Cut(line, ": ")
		if !ok {
			return styleNarrative.Render(line)
		}
		return styleNarrative.Render(label+": ") + styleListed.Render(rest)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindMenu:
		return styleMenu.Render(line)
	case kindRefusal:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// renderSystem renders a front-end message: trace lines dimmed, errors red,
// everything else gray in brackets.
func renderSystem(text string) string {
	switch {
	case strings.HasPrefix(text, "[trace]"):
		return styleTrace.Render(text)
	case strings.HasPrefix(text, "Error:"), strings.HasSuffix(text, "failed"),
		strings.Contains(text, " failed:"):
		return styleError.Render("[" + text + "]")
	default:
		return styleSystem.Render("[" + text + "]")
	}
}
