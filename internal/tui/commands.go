package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/tasks"
	"github.com/julianstephens/kairos/internal/today"
)

type habitsLoadedMsg struct {
	seq    uint64
	day    time.Time
	habits []models.HabitForHome
	err    error
}

type tasksLoadedMsg struct {
	seq   uint64
	tasks []models.Task
	err   error
}

type scheduleLoadedMsg struct {
	seq   uint64
	slots []models.Schedule
	err   error
}

type financeLoadedMsg struct {
	seq  uint64
	data *models.FinanceSummary
	err  error
}

type checkinDoneMsg struct {
	attempt *today.Attempt
	checkin *models.HabitCheckin
	err     error
}

type habitExitedMsg struct {
	attempt *today.Attempt
}

type taskDoneMsg struct {
	attempt *tasks.Attempt
	task    *models.Task
	err     error
}

type taskExitedMsg struct {
	attempt *tasks.Attempt
}

type habitCreatedMsg struct {
	habit *models.Habit
	err   error
}

type habitDeletedMsg struct {
	name string
	err  error
}

type loginDoneMsg struct {
	profile *models.UserProfile
	err     error
}

func (m Model) loadAll() tea.Cmd {
	return tea.Batch(m.loadHabits(), m.loadTasks(), m.loadSchedule(), m.loadFinance())
}

// loadHabits aborts the previous habits fetch, if any
func (m Model) loadHabits() tea.Cmd {
	backend, uid, day := m.backend, m.uid, m.today()
	ctx, seq := m.habitFetch.Start(m.ctx)
	return func() tea.Msg {
		habits, err := backend.HabitsForDay(ctx, uid, day)
		return habitsLoadedMsg{seq: seq, day: day, habits: habits, err: err}
	}
}

// loadTasks aborts the previous tasks fetch, if any
func (m Model) loadTasks() tea.Cmd {
	backend, uid := m.backend, m.uid
	ctx, seq := m.taskFetch.Start(m.ctx)
	return func() tea.Msg {
		items, err := backend.ListTasksByUser(ctx, uid)
		return tasksLoadedMsg{seq: seq, tasks: items, err: err}
	}
}

// loadSchedule aborts the previous schedule fetch, if any
func (m Model) loadSchedule() tea.Cmd {
	backend, uid := m.backend, m.uid
	ctx, seq := m.scheduleFetch.Start(m.ctx)
	return func() tea.Msg {
		slots, err := backend.ListSchedulesByUser(ctx, uid)
		return scheduleLoadedMsg{seq: seq, slots: slots, err: err}
	}
}

// loadFinance aborts the previous finance fetch, if any
func (m Model) loadFinance() tea.Cmd {
	backend, uid := m.backend, m.uid
	ctx, seq := m.financeCard.Start(m.ctx)
	return func() tea.Msg {
		data, err := backend.FinanceSummary(ctx, uid)
		return financeLoadedMsg{seq: seq, data: data, err: err}
	}
}

func (m Model) createCheckin(a *today.Attempt) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		c, err := backend.CreateCheckin(ctx, a.Request)
		return checkinDoneMsg{attempt: a, checkin: c, err: err}
	}
}

func (m Model) updateTask(a *tasks.Attempt) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		t, err := backend.UpdateTask(ctx, a.Updated)
		return taskDoneMsg{attempt: a, task: t, err: err}
	}
}

func (m Model) exitTimer(msg tea.Msg) tea.Cmd {
	return tea.Tick(m.exitAfter, func(time.Time) tea.Msg { return msg })
}

func (m Model) createHabit(h models.Habit) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		created, err := backend.CreateHabit(ctx, h)
		return habitCreatedMsg{habit: created, err: err}
	}
}

func (m Model) deleteHabit(id, name string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return habitDeletedMsg{name: name, err: backend.DeleteHabit(ctx, id)}
	}
}

func (m Model) mutated() {
	if m.onMutation != nil {
		m.onMutation(m.ctx)
	}
}
