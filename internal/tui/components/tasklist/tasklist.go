package tasklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/tasks"
)

type CompleteTaskMsg struct {
	ID string
}

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	exitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Complete: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "complete task"),
		),
	}
}

// Model renders the priority tasks card from a shared board
type Model struct {
	board  *tasks.Board
	keys   KeyMap
	cursor int
	err    error
	loc    *time.Location
}

func New(board *tasks.Board, loc *time.Location) Model {
	return Model{board: board, keys: DefaultKeyMap(), loc: loc}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m *Model) SetError(err error) {
	m.err = err
	m.clamp()
}

func (m Model) Err() error {
	return m.err
}

func (m Model) Selected() (models.Task, bool) {
	top := m.board.Top()
	if m.cursor < 0 || m.cursor >= len(top) {
		return models.Task{}, false
	}
	return top[m.cursor], true
}

func (m *Model) clamp() {
	n := len(m.board.Top())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		m.clamp()
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.board.Top())-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Complete):
		if t, ok := m.Selected(); ok && !t.Completed {
			return m, func() tea.Msg { return CompleteTaskMsg{ID: t.ID} }
		}
	}
	return m, nil
}

func (m Model) View(focused bool) string {
	switch {
	case m.board.Loading():
		return dimStyle.Render("Loading tasks...")
	case m.err != nil:
		return errorStyle.Render("Could not load tasks: "+m.err.Error()) + "\n" +
			dimStyle.Render("Press r to retry.")
	case m.board.AllComplete():
		return doneStyle.Render("🎉 All tasks completed!")
	}

	top := m.board.Top()
	if len(top) == 0 {
		return "No pending tasks."
	}

	exiting := m.board.Exiting()
	var b strings.Builder
	for i, t := range top {
		marker := "  "
		if focused && i == m.cursor {
			marker = cursorStyle.Render("› ")
		}

		box, title := "☐", t.Title
		if t.ID == exiting {
			box = "☑"
			title = exitingStyle.Render(title)
		}
		line := fmt.Sprintf("%s%s %s %s", marker, box, priorityLabel(t.Priority), title)
		if due := m.due(t); due != "" {
			line += "  " + dimStyle.Render(due)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func priorityLabel(p models.Priority) string {
	style, ok := priorityStyles[p]
	if !ok {
		return "[ ]"
	}
	return style.Render("[" + strings.ToUpper(string(p)[:1]) + "]")
}

func (m Model) due(t models.Task) string {
	if t.DueTimestamp == "" {
		return t.DueDate
	}
	ts := models.ParseTimestamp(t.DueTimestamp)
	if ts.IsZero() {
		return ""
	}
	if m.loc != nil {
		ts = ts.In(m.loc)
	}
	return ts.Format("Jan 2 15:04")
}
