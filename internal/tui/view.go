package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/kairos/internal/constants"
	financecard "github.com/julianstephens/kairos/internal/tui/components/finance"
	"github.com/julianstephens/kairos/internal/utils"
)

const minCardWidth = 30

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateLogin:
		content = m.viewLogin()
	case constants.StateAddHabit:
		content = m.viewForm("New habit")
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewDashboard()
	}

	return docStyle.Render(content)
}

func (m Model) viewHeader() string {
	day := m.today()
	date := fmt.Sprintf("%s %d de %s", utils.DayName(utils.DayIndex(day)), day.Day(), utils.MonthName(int(day.Month())-1))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(constants.AppName),
		statusStyle.Render("  "+date),
	)
}

func (m Model) viewDashboard() string {
	width := minCardWidth
	if m.width > 0 {
		// two cards per row inside the document padding
		if w := (m.width-4)/2 - 4; w > width {
			width = w
		}
	}

	habitsCard := m.card(constants.CardHabits, m.habitsModel.Title(), m.habitsModel.View(m.focus == constants.CardHabits), width)
	tasksCard := m.card(constants.CardTasks, "Tasks", m.taskList.View(m.focus == constants.CardTasks), width)
	scheduleCard := m.card(constants.CardSchedule, "Schedule", m.scheduleModel.View(), width)
	financeCard := m.card(constants.CardFinance, "Finance", financecard.View(m.financeCard), width)

	grid := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, habitsCard, tasksCard),
		lipgloss.JoinHorizontal(lipgloss.Top, scheduleCard, financeCard),
	)

	parts := []string{m.viewHeader(), "", grid}
	if m.status != "" {
		parts = append(parts, warningStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) card(id constants.Card, title, body string, width int) string {
	style := cardStyle
	if m.focus == id {
		style = focusedCardStyle
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render(title),
		body,
	))
}

func (m Model) viewLogin() string {
	if m.signingIn {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.viewHeader(),
			"",
			statusStyle.Render("Signing in..."),
		)
	}
	return m.viewForm("Sign in")
}

func (m Model) viewForm(title string) string {
	parts := []string{m.viewHeader(), "", cardTitleStyle.Render(title)}
	if m.formError != "" {
		parts = append(parts, dangerStyle.Render(m.formError))
	}
	if m.form != nil {
		parts = append(parts, m.form.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q and its check-ins?", m.habitToDelete.Name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
