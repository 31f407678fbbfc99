// Package today reconciles the day's habits with optimistic check-ins.
//
// A Board holds the habits fetched for one day together with their
// checkins. Toggling a habit increments its streak immediately, then either
// records the server's checkin or restores the previous streak. Only one
// habit can be in flight at a time.
package today

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/models"
)

var (
	// ErrBusy is returned when a habit is already being checked in
	ErrBusy = errors.New("another habit is being checked in")
	// ErrNotPending is returned when the habit is already completed for the day
	ErrNotPending = errors.New("habit is already completed today")
	// ErrUnknownHabit is returned when the habit is not on the board
	ErrUnknownHabit = errors.New("habit not found on today's board")
)

// Source fetches the habits of a user together with one day's checkins
type Source interface {
	HabitsForDay(ctx context.Context, uid string, day time.Time) ([]models.HabitForHome, error)
}

// CheckinCreator records a checkin remotely. It may return a nil checkin when
// the server acknowledges without echoing the record.
type CheckinCreator interface {
	CreateCheckin(ctx context.Context, checkin models.HabitCheckin) (*models.HabitCheckin, error)
}

// Attempt is an optimistic toggle awaiting confirmation
type Attempt struct {
	HabitID string
	// Request is the checkin to send to the server
	Request models.HabitCheckin

	prevStreak  int
	prevLongest int
}

type Board struct {
	mu      sync.Mutex
	habits  []models.HabitForHome
	loading bool
	exiting string
	day     time.Time
	now     func() time.Time
}

// NewBoard returns an empty board in the loading state
func NewBoard() *Board {
	return &Board{
		loading: true,
		now:     time.Now,
	}
}

// SetClock overrides the clock used for synthesized checkins
func (b *Board) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// Load fetches the habits of uid for day and replaces the board contents.
func (b *Board) Load(ctx context.Context, src Source, uid string, day time.Time) error {
	habits, err := src.HabitsForDay(ctx, uid, day)
	b.Loaded(day, habits, err)
	if err != nil {
		return fmt.Errorf("failed to load habits for %s: %w", day.Format(constants.DateFormat), err)
	}
	return nil
}

// Loaded applies a fetch result. A failed fetch leaves the board empty.
// The habit in flight keeps its local record and stays in flight until
// Commit, Rollback or FinishExit.
func (b *Board) Loaded(day time.Time, habits []models.HabitForHome, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loading = false
	b.day = day
	if err != nil {
		logger.Warn("Failed to load today's habits", "error", err)
		b.habits = nil
		b.exiting = ""
		return
	}

	var inflight *models.HabitForHome
	if idx := b.index(b.exiting); idx >= 0 {
		h := cloneHabit(b.habits[idx])
		inflight = &h
	}
	b.exiting = ""
	b.habits = make([]models.HabitForHome, len(habits))
	for i, h := range habits {
		if inflight != nil && h.ID == inflight.ID {
			b.habits[i] = *inflight
			b.exiting = inflight.ID
			continue
		}
		b.habits[i] = cloneHabit(h)
	}
}

// Loading reports whether the initial fetch is still outstanding
func (b *Board) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Exiting returns the id of the habit in flight, or "" when none is
func (b *Board) Exiting() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exiting
}

// Habits returns a copy of every habit on the board
func (b *Board) Habits() []models.HabitForHome {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.HabitForHome, len(b.habits))
	for i, h := range b.habits {
		out[i] = cloneHabit(h)
	}
	return out
}

// Pending returns the habits still to do today, in board order. The habit
// in flight stays listed until its exit finishes.
func (b *Board) Pending() []models.HabitForHome {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []models.HabitForHome
	for _, h := range b.habits {
		if !h.Completed() || h.ID == b.exiting {
			out = append(out, cloneHabit(h))
		}
	}
	return out
}

// AllComplete reports whether every habit on a loaded, non-empty board is done
func (b *Board) AllComplete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loading || len(b.habits) == 0 {
		return false
	}
	for _, h := range b.habits {
		if !h.Completed() {
			return false
		}
	}
	return true
}

// Counts returns how many habits are completed out of the total
func (b *Board) Counts() (done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, h := range b.habits {
		if h.Completed() {
			done++
		}
	}
	return done, len(b.habits)
}

// Begin starts an optimistic toggle of habitID: the habit is marked in
// flight and its streak is incremented. The returned Attempt must be passed
// to Commit or Rollback.
func (b *Board) Begin(habitID string) (*Attempt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exiting != "" {
		return nil, ErrBusy
	}
	idx := b.index(habitID)
	if idx < 0 {
		return nil, ErrUnknownHabit
	}
	h := &b.habits[idx]
	if h.Completed() {
		return nil, ErrNotPending
	}

	a := &Attempt{
		HabitID:     habitID,
		prevStreak:  h.Streak,
		prevLongest: h.LongestStreak,
		Request: models.HabitCheckin{
			HabitID:   habitID,
			Date:      b.dayString(),
			Completed: true,
			Quantity:  h.Quantity,
		},
	}

	b.exiting = habitID
	h.Streak++
	if h.Streak > h.LongestStreak {
		h.LongestStreak = h.Streak
	}
	return a, nil
}

// Commit records a confirmed checkin for the attempt. When confirmed is nil a
// completed checkin is synthesized locally. The habit stays in flight until
// FinishExit.
func (b *Board) Commit(a *Attempt, confirmed *models.HabitCheckin) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.index(a.HabitID)
	if idx < 0 {
		return
	}

	var c models.HabitCheckin
	if confirmed != nil {
		c = *confirmed
		if c.HabitID == "" {
			c.HabitID = a.HabitID
		}
	} else {
		c = a.Request
		c.ID = uuid.New().String()
		c.CreatedAt = b.now().UTC().Format(time.RFC3339Nano)
	}
	if c.CreatedAt == "" {
		c.CreatedAt = b.now().UTC().Format(time.RFC3339Nano)
	}
	// the committed checkin must be the latest one, whatever the server's
	// clock or timestamp format
	if latest, ok := b.habits[idx].LatestCheckin(); ok && !c.Created().After(latest.Created()) {
		c.CreatedAt = latest.Created().Add(time.Millisecond).UTC().Format(time.RFC3339Nano)
	}
	b.habits[idx].Checkins = append(b.habits[idx].Checkins, c)
	logger.Debug("Checkin committed", "habit", a.HabitID, "checkin", c.ID)
}

// Rollback undoes the optimistic streak increment of a failed attempt and
// clears the in-flight marker, so the habit is pending again.
func (b *Board) Rollback(a *Attempt, cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx := b.index(a.HabitID); idx >= 0 {
		b.habits[idx].Streak = a.prevStreak
		b.habits[idx].LongestStreak = a.prevLongest
	}
	if b.exiting == a.HabitID {
		b.exiting = ""
	}
	logger.Error("Checkin failed, streak restored", "habit", a.HabitID, "error", cause)
}

// FinishExit clears the in-flight marker once the habit has left the list
func (b *Board) FinishExit(habitID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.exiting == habitID {
		b.exiting = ""
	}
}

// Toggle runs a full check-in of habitID against creator: Begin, the remote
// call, then Commit or Rollback, and finally FinishExit.
func (b *Board) Toggle(ctx context.Context, creator CheckinCreator, habitID string) error {
	a, err := b.Begin(habitID)
	if err != nil {
		return err
	}

	confirmed, err := creator.CreateCheckin(ctx, a.Request)
	if err != nil {
		b.Rollback(a, err)
		return fmt.Errorf("failed to record checkin: %w", err)
	}

	b.Commit(a, confirmed)
	b.FinishExit(habitID)
	return nil
}

func (b *Board) index(habitID string) int {
	for i := range b.habits {
		if b.habits[i].ID == habitID {
			return i
		}
	}
	return -1
}

func (b *Board) dayString() string {
	if b.day.IsZero() {
		return b.now().Format(constants.DateFormat)
	}
	return b.day.Format(constants.DateFormat)
}

func cloneHabit(h models.HabitForHome) models.HabitForHome {
	h.Checkins = append([]models.HabitCheckin(nil), h.Checkins...)
	h.CustomDays = append([]int(nil), h.CustomDays...)
	return h
}
