package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/validation"
)

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (m *Model) newHabitForm() *huh.Form {
	days := make([]huh.Option[int], len(weekdayNames))
	for i, n := range weekdayNames {
		days[i] = huh.NewOption(n, i)
	}

	f := m.habitForm
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				CharLimit(constants.HabitNameMaxLen).
				Value(&f.Name),
			huh.NewInput().
				Title("Description").
				CharLimit(constants.HabitDescriptionMaxLen).
				Value(&f.Description),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Weekly", string(models.FrequencyWeekly)),
					huh.NewOption("Monthly", string(models.FrequencyMonthly)),
					huh.NewOption("Custom days", string(models.FrequencyCustom)),
				).
				Value(&f.Frequency),
		),
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Days").
				Options(days...).
				Value(&f.CustomDays),
		).WithHideFunc(func() bool { return f.Frequency != string(models.FrequencyCustom) }),
		huh.NewGroup(
			huh.NewInput().Title("Quantity").Value(&f.Quantity),
			huh.NewInput().Title("Measure").Placeholder(constants.DefaultMeasure).Value(&f.Measure),
			huh.NewInput().Title("Category").Value(&f.Category),
		),
	).WithTheme(huh.ThemeBase())
}

func (m *Model) newLoginForm() *huh.Form {
	f := m.loginForm
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password),
		),
	).WithTheme(huh.ThemeBase())
}

func (m *Model) openHabitForm() tea.Cmd {
	m.habitForm = &HabitFormModel{
		Frequency: string(models.FrequencyDaily),
		Quantity:  "1",
	}
	m.formError = ""
	m.state = constants.StateAddHabit
	m.form = m.newHabitForm()
	return m.form.Init()
}

// submitHabit validates the form and creates the habit. On a validation
// error the form is reopened with its values kept.
func (m *Model) submitHabit() tea.Cmd {
	f := m.habitForm
	habit, err := validation.ValidateHabitForm(m.uid, validation.HabitForm{
		Name:        f.Name,
		Description: f.Description,
		Frequency:   models.HabitFrequency(f.Frequency),
		CustomDays:  f.CustomDays,
		Quantity:    f.Quantity,
		Measure:     f.Measure,
		Category:    f.Category,
	})
	if err != nil {
		m.formError = err.Error()
		m.form = m.newHabitForm()
		return m.form.Init()
	}

	m.formError = ""
	m.state = constants.StateDashboard
	m.form = nil
	m.status = "Saving habit..."
	return m.createHabit(habit)
}

// submitLogin validates the credentials and signs in
func (m *Model) submitLogin() tea.Cmd {
	creds := validation.Credentials{
		Email:    strings.TrimSpace(m.loginForm.Email),
		Password: m.loginForm.Password,
	}
	if err := validation.ValidateCredentials(validation.SignIn, creds); err != nil {
		m.formError = err.Error()
		m.form = m.newLoginForm()
		return m.form.Init()
	}

	m.formError = ""
	m.signingIn = true
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		profile, err := session.Login(ctx, creds)
		return loginDoneMsg{profile: profile, err: err}
	}
}
