package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/today"
	"github.com/julianstephens/kairos/internal/tui/components/habits"
	"github.com/julianstephens/kairos/internal/tui/components/schedule"
	"github.com/julianstephens/kairos/internal/tui/components/tasklist"
)

const cardCount = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case habitsLoadedMsg:
		if !m.habitFetch.Current(msg.seq) {
			return m, nil
		}
		m.habitFetch.Done(msg.seq)
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.habitBoard.Loaded(msg.day, msg.habits, msg.err)
		if m.habitBoard.Exiting() == "" {
			m.habitAttempt, m.habitExit = nil, nil
		}
		m.habitsModel.SetDay(msg.day, msg.err)
		return m, nil

	case tasksLoadedMsg:
		if !m.taskFetch.Current(msg.seq) {
			return m, nil
		}
		m.taskFetch.Done(msg.seq)
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.taskBoard.Loaded(msg.tasks, msg.err)
		if m.taskBoard.Exiting() == "" {
			m.taskAttempt, m.taskExit = nil, nil
		}
		m.taskList.SetError(msg.err)
		return m, nil

	case scheduleLoadedMsg:
		if !m.scheduleFetch.Current(msg.seq) {
			return m, nil
		}
		m.scheduleFetch.Done(msg.seq)
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		if msg.err != nil {
			logger.Warn("Failed to refresh schedule", "error", msg.err)
		}
		m.scheduleModel.Time = m.now()
		m.scheduleModel.SetSlots(msg.slots, msg.err)
		return m, nil

	case schedule.TickMsg:
		var cmd tea.Cmd
		m.scheduleModel, cmd = m.scheduleModel.Update(msg)
		if m.uid == "" {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.loadSchedule())

	case financeLoadedMsg:
		m.financeCard.Finish(msg.seq, msg.data, msg.err)
		return m, nil

	case habits.ToggleHabitMsg:
		cmd := m.toggleHabit(msg.ID)
		return m, cmd

	case checkinDoneMsg:
		return m.checkinDone(msg)

	case habitExitedMsg:
		if msg.attempt != m.habitExit {
			return m, nil
		}
		if msg.attempt == m.habitAttempt {
			m.habitExitDone = true
			return m, nil
		}
		m.habitExit = nil
		m.habitBoard.FinishExit(msg.attempt.HabitID)
		m.habitsModel, _ = m.habitsModel.Update(msg)
		return m, nil

	case tasklist.CompleteTaskMsg:
		cmd := m.completeTask(msg.ID)
		return m, cmd

	case taskDoneMsg:
		return m.taskDone(msg)

	case taskExitedMsg:
		if msg.attempt != m.taskExit {
			return m, nil
		}
		if msg.attempt == m.taskAttempt {
			m.taskExitDone = true
			return m, nil
		}
		m.taskExit = nil
		m.taskBoard.FinishExit()
		m.taskList, _ = m.taskList.Update(msg)
		return m, nil

	case habits.AddHabitMsg:
		cmd := m.openHabitForm()
		return m, cmd

	case habits.DeleteHabitMsg:
		m.habitToDelete = msg
		m.state = constants.StateConfirmDelete
		return m, nil

	case habitCreatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not add habit: %v", msg.err)
			return m, nil
		}
		m.mutated()
		m.status = fmt.Sprintf("Added habit: %s", msg.habit.Name)
		return m, m.loadHabits()

	case habitDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not delete habit: %v", msg.err)
			return m, nil
		}
		m.mutated()
		m.status = fmt.Sprintf("Deleted habit: %s", msg.name)
		return m, m.loadHabits()

	case loginDoneMsg:
		m.signingIn = false
		if msg.err != nil {
			m.formError = msg.err.Error()
			m.loginForm.Password = ""
			m.form = m.newLoginForm()
			return m, m.form.Init()
		}
		m.uid = msg.profile.UID
		m.state = constants.StateDashboard
		m.form = nil
		m.loginForm = nil
		m.status = fmt.Sprintf("Signed in as %s", msg.profile.Email)
		return m, tea.Batch(m.loadAll(), m.scheduleModel.Init())
	}

	switch m.state {
	case constants.StateLogin, constants.StateAddHabit:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m.updateDashboard(msg)
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Tab):
		m.focus = (m.focus + 1) % cardCount
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.focus = (m.focus + cardCount - 1) % cardCount
		return m, nil
	case key.Matches(keyMsg, m.keys.Refresh):
		cmd := m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case constants.CardHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.CardTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

// refresh reloads the focused card. Boards with a toggle in flight are left
// alone so the pending write is not lost.
func (m *Model) refresh() tea.Cmd {
	m.status = ""
	switch m.focus {
	case constants.CardHabits:
		if m.habitBoard.Exiting() != "" {
			m.status = "Wait for the current check-in to finish."
			return nil
		}
		return m.loadHabits()
	case constants.CardTasks:
		if m.taskBoard.Exiting() != "" {
			m.status = "Wait for the current task to finish."
			return nil
		}
		return m.loadTasks()
	case constants.CardSchedule:
		return m.loadSchedule()
	case constants.CardFinance:
		return m.loadFinance()
	}
	return nil
}

func (m *Model) toggleHabit(id string) tea.Cmd {
	a, err := m.habitBoard.Begin(id)
	if err != nil {
		if !errors.Is(err, today.ErrBusy) {
			m.status = err.Error()
		}
		return nil
	}
	m.habitAttempt, m.habitExit = a, a
	m.habitExitDone = false
	m.status = ""
	return tea.Batch(m.createCheckin(a), m.exitTimer(habitExitedMsg{attempt: a}))
}

func (m Model) checkinDone(msg checkinDoneMsg) (tea.Model, tea.Cmd) {
	if m.habitAttempt != msg.attempt {
		return m, nil
	}
	id := msg.attempt.HabitID
	m.habitAttempt = nil

	if msg.err != nil {
		m.habitBoard.Rollback(msg.attempt, msg.err)
		m.habitExit = nil
		m.status = fmt.Sprintf("Check-in failed: %v", msg.err)
		m.habitsModel, _ = m.habitsModel.Update(msg)
		return m, nil
	}

	m.habitBoard.Commit(msg.attempt, msg.checkin)
	m.mutated()
	if m.habitExitDone {
		m.habitExit = nil
		m.habitBoard.FinishExit(id)
		m.habitsModel, _ = m.habitsModel.Update(msg)
	}
	return m, nil
}

func (m *Model) completeTask(id string) tea.Cmd {
	a, err := m.taskBoard.Toggle(id)
	if err != nil {
		return nil
	}
	m.taskAttempt, m.taskExit = a, a
	m.taskExitDone = false
	m.status = ""
	return tea.Batch(m.updateTask(a), m.exitTimer(taskExitedMsg{attempt: a}))
}

func (m Model) taskDone(msg taskDoneMsg) (tea.Model, tea.Cmd) {
	if m.taskAttempt != msg.attempt {
		return m, nil
	}
	m.taskAttempt = nil

	if msg.err != nil {
		m.taskBoard.Rollback(msg.attempt, msg.err)
		m.taskExit = nil
		m.status = fmt.Sprintf("Could not complete task: %v", msg.err)
		m.taskList, _ = m.taskList.Update(msg)
		return m, nil
	}

	m.taskBoard.Commit(msg.attempt, msg.task)
	m.mutated()
	if m.taskExitDone {
		m.taskExit = nil
		m.taskBoard.FinishExit()
		m.taskList, _ = m.taskList.Update(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyCtrlC:
			m.quitting = true
			m.Close()
			return m, tea.Quit
		case keyMsg.Type == tea.KeyEsc && m.state == constants.StateAddHabit:
			m.state = constants.StateDashboard
			m.form = nil
			m.formError = ""
			return m, nil
		}
	}
	if m.form == nil || m.signingIn {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateLogin {
			next := m.submitLogin()
			return m, next
		}
		next := m.submitHabit()
		return m, next
	case huh.StateAborted:
		if m.state == constants.StateLogin {
			m.quitting = true
			m.Close()
			return m, tea.Quit
		}
		m.state = constants.StateDashboard
		m.form = nil
		m.formError = ""
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		target := m.habitToDelete
		m.habitToDelete = habits.DeleteHabitMsg{}
		m.state = constants.StateDashboard
		m.status = "Deleting habit..."
		return m, m.deleteHabit(target.ID, target.Name)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDelete = habits.DeleteHabitMsg{}
		m.state = constants.StateDashboard
	}
	return m, nil
}
