// Package tui provides a keyboard picker for choosing which file of a group to
// delete
package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luinbytes/same-size-finder/grouping"
	"github.com/luinbytes/same-size-finder/report"
	"github.com/luinbytes/same-size-finder/resolve"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2)

	itemStyle = lipgloss.NewStyle().PaddingLeft(4)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("#7D56F4")).
				Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// keyMap defines keybindings for the picker
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Keep   key.Binding
	Quit   key.Binding
	Help   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Delete: key.NewBinding(
		key.WithKeys("enter", "d"),
		key.WithHelp("enter/d", "trash selected file"),
	),
	Keep: key.NewBinding(
		key.WithKeys("q", "esc", "n"),
		key.WithHelp("q/esc", "keep all"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "stop"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Keep, k.Help}
}

// FullHelp returns keybindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Delete, k.Keep, k.Quit, k.Help},
	}
}

// Model is the picker state for one group
type Model struct {
	group    grouping.Group
	prompt   string
	cursor   int
	showHelp bool
	done     bool
	stopped  bool
	choice   string
	keys     keyMap
	help     help.Model
}

// New creates a picker over group
func New(group grouping.Group, prompt string) Model {
	return Model{
		group:  group,
		prompt: prompt,
		keys:   keys,
		help:   help.New(),
	}
}

// Init initializes the picker
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and user input
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			m.stopped = true
			m.choice = ""
			return m, tea.Quit

		case key.Matches(msg, m.keys.Keep):
			m.done = true
			m.choice = ""
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.group.Files)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Delete):
			if len(m.group.Files) > 0 {
				m.done = true
				m.choice = strconv.Itoa(m.cursor + 1)
				return m, tea.Quit
			}

		default:
			// Digits jump straight to a member, as typing the number would.
			if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.group.Files) {
				m.cursor = n - 1
			}
		}
	}

	return m, nil
}

// Choice returns the 1-based index picked, or "" when the user kept all
func (m Model) Choice() string {
	return m.choice
}

// Stopped reports whether the user asked to end the whole run
func (m Model) Stopped() bool {
	return m.stopped
}

// View renders the picker
func (m Model) View() string {
	if m.done {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render(" " + strings.TrimSpace(m.prompt) + " "))
	s.WriteString("\n\n")

	for i, file := range m.group.Files {
		line := fmt.Sprintf("%d: %s", i+1, file.Path)
		if i == m.cursor {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render(line))
		}
		s.WriteString(infoStyle.Render(" (" + report.FormatMiB(file.Size) + ")"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.showHelp {
		s.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		s.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return s.String()
}

// Picker runs one bubbletea program per prompt
type Picker struct {
	in  io.Reader
	out io.Writer
}

// NewPicker returns a picker reading keys from in and drawing to out
func NewPicker(in io.Reader, out io.Writer) *Picker {
	return &Picker{in: in, out: out}
}

// ReadLine shows group and returns the chosen index as the user would have
// typed it. ctrl+c yields resolve.ErrInterrupted.
func (p *Picker) ReadLine(prompt string, group grouping.Group) (string, error) {
	prog := tea.NewProgram(New(group, prompt), tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("picker error: %w", err)
	}
	m := final.(Model)
	if m.Stopped() {
		return "", resolve.ErrInterrupted
	}
	return m.Choice(), nil
}
