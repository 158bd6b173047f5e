package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gamedisk/engine/nav"
	"github.com/nathoo/gamedisk/engine/state"
)

// renderStatusBar produces a full-width inverted status line: room, exits,
// conversation partner, inventory and turn.
func (m Model) renderStatusBar() string {
	d := m.session.Engine.Disk

	roomName := d.RoomID
	exitStr := ""
	if room, err := state.CurrentRoom(d); err == nil {
		if room.Name != "" {
			roomName = room.Name
		}
		exitStr = strings.Join(nav.Directions(room), ",")
	}

	left := fmt.Sprintf(" %s | Exits: %s", roomName, exitStr)
	if c := state.CharacterByID(d, d.Conversant); c != nil {
		name := c.ID
		if len(c.Name) > 0 {
			name = c.Name[0]
		}
		left += " | Talking: " + name
	}
	if d.Ended {
		left += " | The End"
	}

	right := fmt.Sprintf("T:%d ", d.Turn)
	if n := len(d.Inventory); n > 0 {
		names := make([]string, 0, n)
		for _, it := range d.Inventory {
			if len(it.Name) > 0 {
				names = append(names, it.Name[0])
			} else {
				names = append(names, it.ID)
			}
		}
		// Item names when they fit, otherwise the count.
		candidate := fmt.Sprintf("Inv: %s | T:%d ", strings.Join(names, ", "), d.Turn)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", n, d.Turn)
		}
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
