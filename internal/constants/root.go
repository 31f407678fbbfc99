package constants

import (
	"time"
)

// SessionState represents the current state of the TUI application
type SessionState int

// Card identifies a dashboard card
type Card int

const (
	AppName            = "kairos"
	DefaultKeyringUser = "refresh-token"
	KeyringDBUser      = "database-connection"
	DefaultConfigDir   = "~/.config/kairos"
	DefaultStorePath   = "~/.config/kairos/kairos.db"
	ConfigFileName     = "config.yaml"
	Version            = "v0.3.0"

	// Persisted slice names
	AuthStoreName = "authStore"
	UserStoreName = "userStore"

	// Persisted slice envelope version
	PersistVersion = 0

	// TUI lock
	LockfileName = "kairos-tui.lock"

	// Card behaviour
	CardDisplayLimit        = 4
	ExitDelay               = 500 * time.Millisecond
	ExitDuration            = 300 * time.Millisecond
	ScheduleRefreshInterval = time.Hour
	TokenRefreshSkew        = time.Minute

	// Habit form limits
	HabitNameMaxLen        = 50
	HabitDescriptionMaxLen = 200
	DefaultMeasure         = "vez"

	// Auth form limits
	MinPasswordLen = 6
)

// Session States
const (
	StateDashboard SessionState = iota
	StateAddHabit
	StateLogin
	StateConfirmDelete
)

const (
	CardHabits Card = iota
	CardTasks
	CardSchedule
	CardFinance
)
