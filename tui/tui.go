package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/gamedisk/session"
)

// rawLine stores an unstyled transcript line so it can be re-wrapped and
// re-styled when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // echoed player input
	isSystem bool // front-end message
}

// Model is the Bubble Tea model for the game TUI.
type Model struct {
	session *session.Session
	ctx     context.Context

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool

	// copyText writes the transcript for /copy.
	copyText func(string) error
}

// outputMsg carries session output into the Update loop.
type outputMsg struct {
	input string // echoed player input, empty for the opening
	out   session.Output
}

// New creates a TUI model for a session.
func New(ctx context.Context, s *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		session:  s,
		ctx:      ctx,
		input:    ti,
		history:  NewHistory(100),
		copyText: clipboard.WriteAll,
	}
}

// Run starts the Bubble Tea program and blocks until the player quits or ctx
// is cancelled.
func Run(ctx context.Context, s *session.Session) error {
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init emits the engine's opening text.
func (m Model) Init() tea.Cmd {
	opening := m.session.Engine.Opening.Output
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return outputMsg{out: session.Output{Lines: opening}}
	})
}

// Update handles key presses, resizes and output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(m.height-2, 1) // status bar + input line
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			next, _ := m.history.Next()
			m.input.SetValue(next)
			m.input.CursorEnd()
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter submits the input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if input == "/copy" {
		return m.appendOutput(outputMsg{input: input, out: session.Output{System: m.copyTranscript()}}), nil
	}

	out := m.session.Handle(m.ctx, input)
	if strings.HasPrefix(input, "/help") {
		out.System = append(out.System, "  /copy           Copy the transcript to the clipboard",
			"", "Navigation: PgUp/PgDn to scroll, Up/Down for command history")
	}
	m = m.appendOutput(outputMsg{input: input, out: out})
	if out.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) copyTranscript() []string {
	if err := m.copyText(m.Transcript()); err != nil {
		return []string{fmt.Sprintf("Copy failed: %v", err)}
	}
	return []string{"Transcript copied to the clipboard."}
}

// Transcript returns the unstyled text of everything shown so far.
func (m Model) Transcript() string {
	lines := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.isSystem && rl.text != "" {
			lines = append(lines, "["+rl.text+"]")
			continue
		}
		lines = append(lines, rl.text)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

// appendOutput adds a turn to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}

	roomName := m.currentRoomName()
	for _, line := range msg.out.Lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line, roomName)})
	}
	for _, line := range msg.out.System {
		m.rawLines = append(m.rawLines, rawLine{text: line, isSystem: true})
	}

	// Blank line between turns.
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

func (m Model) currentRoomName() string {
	d := m.session.Engine.Disk
	for _, r := range d.Rooms {
		if r.ID == d.RoomID {
			return r.Name
		}
	}
	return ""
}

// refreshViewport re-wraps and re-styles the transcript at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordwrap.String(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, renderSystem(wrapped))
		default:
			styled = append(styled, renderLine(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders viewport, status bar and input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled; those keys
// drive the command history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
