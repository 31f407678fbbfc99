package schedule

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/schedule"
)

var (
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// TickMsg asks the dashboard to refresh the schedule
type TickMsg time.Time

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model keeps the last fetched slots. A failed refresh keeps them and shows
// the error below the window.
type Model struct {
	Time     time.Time
	slots    []models.Schedule
	loaded   bool
	err      error
	loc      *time.Location
	interval time.Duration
}

// New returns a card refreshed every interval, or hourly when interval is zero
func New(now time.Time, loc *time.Location, interval time.Duration) Model {
	if interval <= 0 {
		interval = constants.ScheduleRefreshInterval
	}
	return Model{
		Time:     now,
		loc:      loc,
		interval: interval,
	}
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.Time = time.Time(msg)
		return m, tick(m.interval)
	}
	return m, nil
}

// SetSlots applies a fetch result
func (m *Model) SetSlots(slots []models.Schedule, err error) {
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.loaded = true
	m.slots = append([]models.Schedule(nil), slots...)
}

func (m Model) Err() error {
	return m.err
}

// Window returns the slots currently shown
func (m Model) Window() []schedule.Slot {
	now := m.Time
	if m.loc != nil {
		now = now.In(m.loc)
	}
	return schedule.Window(m.slots, now)
}

func (m Model) View() string {
	if !m.loaded && m.err == nil {
		return timeStyle.Render("Loading schedule...")
	}

	var b strings.Builder
	window := m.Window()
	if len(window) == 0 && m.loaded {
		b.WriteString("Nothing scheduled.\n")
	}
	next := true
	for _, s := range window {
		line := fmt.Sprintf("%s  %s", timeStyle.Render(schedule.FormatStart(s, m.loc)), s.Label)
		if next && s.Start.After(m.Time) {
			line = fmt.Sprintf("%s  %s", activeStyle.Render(schedule.FormatStart(s, m.loc)), activeStyle.Render(s.Label))
			next = false
		}
		b.WriteString(line + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Refresh failed: "+m.err.Error()) + "\n")
		b.WriteString(timeStyle.Render("Press r to retry.") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
