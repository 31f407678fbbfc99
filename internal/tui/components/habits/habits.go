package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/today"
	"github.com/julianstephens/kairos/internal/utils"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	exitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Add    key.Binding
	Delete key.Binding
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
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "check in"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete habit"),
		),
	}
}

// Model renders the habits card from a shared board
type Model struct {
	board  *today.Board
	keys   KeyMap
	cursor int
	day    time.Time
	err    error
}

func New(board *today.Board) Model {
	return Model{board: board, keys: DefaultKeyMap()}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// SetDay records the day shown and the outcome of its load
func (m *Model) SetDay(day time.Time, err error) {
	m.day = day
	m.err = err
	m.clamp()
}

func (m Model) Err() error {
	return m.err
}

// Title is the card heading, e.g. "Habits · Sábado"
func (m Model) Title() string {
	if m.day.IsZero() {
		return "Habits"
	}
	return "Habits · " + utils.DayName(utils.DayIndex(m.day))
}

// Selected returns the pending habit under the cursor
func (m Model) Selected() (models.HabitForHome, bool) {
	pending := m.board.Pending()
	if m.cursor < 0 || m.cursor >= len(pending) {
		return models.HabitForHome{}, false
	}
	return pending[m.cursor], true
}

func (m *Model) clamp() {
	n := len(m.board.Pending())
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
		if m.cursor < len(m.board.Pending())-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Add):
		return m, func() tea.Msg { return AddHabitMsg{} }
	case key.Matches(keyMsg, m.keys.Toggle):
		if h, ok := m.Selected(); ok && h.ID != m.board.Exiting() {
			return m, func() tea.Msg { return ToggleHabitMsg{ID: h.ID} }
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if h, ok := m.Selected(); ok && m.board.Exiting() == "" {
			return m, func() tea.Msg { return DeleteHabitMsg{ID: h.ID, Name: h.Name} }
		}
	}
	return m, nil
}

func (m Model) View(focused bool) string {
	switch {
	case m.board.Loading():
		return footerStyle.Render("Loading habits...")
	case m.err != nil:
		return errorStyle.Render("Could not load habits: "+m.err.Error()) + "\n" +
			footerStyle.Render("Press r to retry.")
	case m.board.AllComplete():
		return doneStyle.Render("🎉 All habits completed!") + "\n" +
			footerStyle.Render("Nice work! New habits will show up here.")
	}

	pending := m.board.Pending()
	if len(pending) == 0 {
		return "No habits for today.\n" + footerStyle.Render("Press a to add one.")
	}

	exiting := m.board.Exiting()
	var b strings.Builder
	for i, h := range pending {
		marker := "  "
		if focused && i == m.cursor {
			marker = cursorStyle.Render("› ")
		}

		box, name := "○", h.Name
		if h.ID == exiting {
			box = "✓"
			name = exitingStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s  🔥 %d\n", marker, box, name, h.Streak)
		fmt.Fprintf(&b, "    %s\n", footerStyle.Render(fmt.Sprintf("Longest streak: %d days", h.LongestStreak)))
	}
	return strings.TrimRight(b.String(), "\n")
}
