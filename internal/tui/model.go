package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/finance"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/tasks"
	"github.com/julianstephens/kairos/internal/today"
	"github.com/julianstephens/kairos/internal/tui/components/habits"
	"github.com/julianstephens/kairos/internal/tui/components/schedule"
	"github.com/julianstephens/kairos/internal/tui/components/tasklist"
	"github.com/julianstephens/kairos/internal/utils"
	"github.com/julianstephens/kairos/internal/validation"
)

// Backend is the part of the REST client the dashboard uses
type Backend interface {
	today.Source
	today.CheckinCreator
	tasks.Updater
	finance.Fetcher
	ListTasksByUser(ctx context.Context, uid string) ([]models.Task, error)
	ListSchedulesByUser(ctx context.Context, uid string) ([]models.Schedule, error)
	CreateHabit(ctx context.Context, h models.Habit) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
}

// Session resolves the signed-in user and signs in from the login form
type Session interface {
	UID() (string, error)
	Login(ctx context.Context, c validation.Credentials) (*models.UserProfile, error)
}

type Options struct {
	// Context bounds every request the dashboard makes; nil means Background
	Context  context.Context
	Backend  Backend
	Session  Session
	Location *time.Location
	Now      func() time.Time
	// OnMutation runs after every successful write
	OnMutation func(context.Context)
}

type HabitFormModel struct {
	Name        string
	Description string
	Frequency   string
	CustomDays  []int
	Quantity    string
	Measure     string
	Category    string
}

type LoginFormModel struct {
	Email    string
	Password string
}

type Model struct {
	backend    Backend
	session    Session
	loc        *time.Location
	now        func() time.Time
	onMutation func(context.Context)
	exitAfter  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	uid   string
	state constants.SessionState
	focus constants.Card
	keys  KeyMap
	help  help.Model

	habitBoard    *today.Board
	taskBoard     *tasks.Board
	financeCard   *finance.Card
	habitFetch    *utils.Inflight
	taskFetch     *utils.Inflight
	scheduleFetch *utils.Inflight

	habitsModel   habits.Model
	taskList      tasklist.Model
	scheduleModel schedule.Model

	// optimistic toggles awaiting the server, the toggles whose exit
	// animation is running, and whether that animation already ended
	habitAttempt  *today.Attempt
	habitExit     *today.Attempt
	habitExitDone bool
	taskAttempt   *tasks.Attempt
	taskExit      *tasks.Attempt
	taskExitDone  bool

	form          *huh.Form
	habitForm     *HabitFormModel
	loginForm     *LoginFormModel
	signingIn     bool
	habitToDelete habits.DeleteHabitMsg
	formError     string
	status        string
	quitting      bool
	width         int
	height        int
}

func NewModel(opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	habitBoard := today.NewBoard()
	habitBoard.SetClock(now)
	taskBoard := tasks.NewBoard()

	m := Model{
		backend:       opts.Backend,
		session:       opts.Session,
		loc:           loc,
		now:           now,
		onMutation:    opts.OnMutation,
		exitAfter:     constants.ExitDelay + constants.ExitDuration,
		ctx:           ctx,
		cancel:        cancel,
		state:         constants.StateDashboard,
		focus:         constants.CardHabits,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		habitBoard:    habitBoard,
		taskBoard:     taskBoard,
		financeCard:   finance.NewCard(),
		habitFetch:    &utils.Inflight{},
		taskFetch:     &utils.Inflight{},
		scheduleFetch: &utils.Inflight{},
		habitsModel:   habits.New(habitBoard),
		taskList:      tasklist.New(taskBoard, loc),
		scheduleModel: schedule.New(now(), loc, 0),
	}

	if uid, err := opts.Session.UID(); err == nil {
		m.uid = uid
	} else {
		m.state = constants.StateLogin
		m.loginForm = &LoginFormModel{}
		m.form = m.newLoginForm()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == constants.StateLogin {
		return m.form.Init()
	}
	return tea.Batch(m.loadAll(), m.scheduleModel.Init())
}

// Close cancels every outstanding request
func (m Model) Close() {
	m.financeCard.Cancel()
	m.habitFetch.Cancel()
	m.taskFetch.Cancel()
	m.scheduleFetch.Cancel()
	m.cancel()
}

func (m Model) today() time.Time {
	return m.now().In(m.loc)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.focus {
	case constants.CardHabits:
		hk := m.habitsModel.Keys()
		keys = append(keys, hk.Toggle, hk.Add)
	case constants.CardTasks:
		keys = append(keys, m.taskList.Keys().Complete)
	default:
		keys = append(keys, m.keys.Refresh)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}

	var actions []key.Binding
	switch m.focus {
	case constants.CardHabits:
		hk := m.habitsModel.Keys()
		actions = []key.Binding{hk.Up, hk.Down, hk.Toggle, hk.Add, hk.Delete}
	case constants.CardTasks:
		tk := m.taskList.Keys()
		actions = []key.Binding{tk.Up, tk.Down, tk.Complete}
	}
	return [][]key.Binding{global, actions}
}
