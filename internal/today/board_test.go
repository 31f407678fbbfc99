package today

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/kairos/internal/models"
)

var testDay = time.Date(2025, time.August, 16, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	habits []models.HabitForHome
	err    error
	gotUID string
	gotDay time.Time
}

func (f *fakeSource) HabitsForDay(ctx context.Context, uid string, day time.Time) ([]models.HabitForHome, error) {
	f.gotUID = uid
	f.gotDay = day
	return f.habits, f.err
}

type fakeCreator struct {
	reply *models.HabitCheckin
	err   error
	calls []models.HabitCheckin
}

func (f *fakeCreator) CreateCheckin(ctx context.Context, c models.HabitCheckin) (*models.HabitCheckin, error) {
	f.calls = append(f.calls, c)
	return f.reply, f.err
}

func habit(id string, streak, longest int, checkins ...models.HabitCheckin) models.HabitForHome {
	return models.HabitForHome{
		Habit: models.Habit{
			ID:            id,
			Name:          "habit " + id,
			Quantity:      1,
			Measure:       "vez",
			Streak:        streak,
			LongestStreak: longest,
			IsActive:      true,
		},
		Checkins: checkins,
	}
}

func checkin(id string, completed bool, created string) models.HabitCheckin {
	return models.HabitCheckin{ID: id, Date: "2025-08-16", Completed: completed, CreatedAt: created}
}

func setupBoard(t *testing.T, habits ...models.HabitForHome) *Board {
	t.Helper()
	b := NewBoard()
	b.SetClock(func() time.Time { return testDay })
	src := &fakeSource{habits: habits}
	if err := b.Load(context.Background(), src, "user-1", testDay); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return b
}

func pendingIDs(b *Board) []string {
	var ids []string
	for _, h := range b.Pending() {
		ids = append(ids, h.ID)
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestLoadPassesUserAndDay(t *testing.T) {
	b := NewBoard()
	if !b.Loading() {
		t.Fatal("expected new board to be loading")
	}

	src := &fakeSource{habits: []models.HabitForHome{habit("a", 0, 0)}}
	if err := b.Load(context.Background(), src, "user-1", testDay); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if src.gotUID != "user-1" || !src.gotDay.Equal(testDay) {
		t.Errorf("expected fetch for user-1 on %v, got %q on %v", testDay, src.gotUID, src.gotDay)
	}
	if b.Loading() {
		t.Error("expected board to stop loading after Load")
	}
}

func TestLoadFailureLeavesEmptyBoard(t *testing.T) {
	b := NewBoard()
	src := &fakeSource{err: errors.New("backend down")}

	if err := b.Load(context.Background(), src, "user-1", testDay); err == nil {
		t.Fatal("expected error from Load")
	}
	if b.Loading() {
		t.Error("expected loading to clear after a failed load")
	}
	if len(b.Habits()) != 0 {
		t.Errorf("expected no habits, got %d", len(b.Habits()))
	}
	if b.AllComplete() {
		t.Error("empty board must not report completion")
	}
}

func TestPendingClassification(t *testing.T) {
	tests := []struct {
		name        string
		habit       models.HabitForHome
		wantPending bool
	}{
		{
			name:        "no checkins today is pending",
			habit:       habit("a", 0, 0),
			wantPending: true,
		},
		{
			name:        "latest checkin completed is not pending",
			habit:       habit("a", 1, 1, checkin("c1", true, "2025-08-16T08:00:00Z")),
			wantPending: false,
		},
		{
			name:        "latest checkin not completed is pending",
			habit:       habit("a", 1, 1, checkin("c1", false, "2025-08-16T08:00:00Z")),
			wantPending: true,
		},
		{
			name: "undone after completion is pending",
			habit: habit("a", 1, 1,
				checkin("c1", true, "2025-08-16T08:00:00Z"),
				checkin("c2", false, "2025-08-16T10:00:00Z"),
			),
			wantPending: true,
		},
		{
			name: "completed after an earlier miss is not pending",
			habit: habit("a", 1, 1,
				checkin("c2", true, "2025-08-16T10:00:00Z"),
				checkin("c1", false, "2025-08-16T08:00:00Z"),
			),
			wantPending: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBoard(t, tt.habit)
			got := contains(pendingIDs(b), "a")
			if got != tt.wantPending {
				t.Errorf("pending = %v, want %v", got, tt.wantPending)
			}
		})
	}
}

func TestAllComplete(t *testing.T) {
	done := checkin("c", true, "2025-08-16T08:00:00Z")

	t.Run("loading board is not complete", func(t *testing.T) {
		if NewBoard().AllComplete() {
			t.Error("expected false while loading")
		}
	})

	t.Run("empty board is not complete", func(t *testing.T) {
		b := setupBoard(t)
		if b.AllComplete() {
			t.Error("expected false for an empty board")
		}
	})

	t.Run("some pending", func(t *testing.T) {
		b := setupBoard(t, habit("a", 0, 0, done), habit("b", 0, 0))
		if b.AllComplete() {
			t.Error("expected false while a habit is pending")
		}
	})

	t.Run("all done shows banner", func(t *testing.T) {
		b := setupBoard(t, habit("a", 0, 0, done), habit("b", 0, 0, done))
		if !b.AllComplete() {
			t.Error("expected true when every habit is completed")
		}
		if len(b.Pending()) != 0 {
			t.Errorf("expected empty pending list, got %v", pendingIDs(b))
		}
	})
}

func TestBeginIncrementsStreak(t *testing.T) {
	tests := []struct {
		name        string
		streak      int
		longest     int
		wantStreak  int
		wantLongest int
	}{
		{name: "extends longest streak", streak: 4, longest: 4, wantStreak: 5, wantLongest: 5},
		{name: "keeps larger longest streak", streak: 2, longest: 10, wantStreak: 3, wantLongest: 10},
		{name: "first checkin", streak: 0, longest: 0, wantStreak: 1, wantLongest: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBoard(t, habit("a", tt.streak, tt.longest))
			a, err := b.Begin("a")
			if err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			if a.Request.HabitID != "a" || !a.Request.Completed || a.Request.Date != "2025-08-16" {
				t.Errorf("unexpected checkin request: %+v", a.Request)
			}

			h := b.Habits()[0]
			if h.Streak != tt.wantStreak || h.LongestStreak != tt.wantLongest {
				t.Errorf("expected streak %d/%d, got %d/%d", tt.wantStreak, tt.wantLongest, h.Streak, h.LongestStreak)
			}
			if b.Exiting() != "a" {
				t.Errorf("expected habit a in flight, got %q", b.Exiting())
			}
		})
	}
}

func TestBeginRejections(t *testing.T) {
	done := checkin("c", true, "2025-08-16T08:00:00Z")

	t.Run("unknown habit", func(t *testing.T) {
		b := setupBoard(t, habit("a", 0, 0))
		if _, err := b.Begin("zzz"); !errors.Is(err, ErrUnknownHabit) {
			t.Errorf("expected ErrUnknownHabit, got %v", err)
		}
	})

	t.Run("already completed", func(t *testing.T) {
		b := setupBoard(t, habit("a", 3, 3, done))
		if _, err := b.Begin("a"); !errors.Is(err, ErrNotPending) {
			t.Errorf("expected ErrNotPending, got %v", err)
		}
		if b.Habits()[0].Streak != 3 {
			t.Error("streak must not change for a completed habit")
		}
	})

	t.Run("same habit twice", func(t *testing.T) {
		b := setupBoard(t, habit("a", 0, 0))
		if _, err := b.Begin("a"); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if _, err := b.Begin("a"); !errors.Is(err, ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", err)
		}
		if b.Habits()[0].Streak != 1 {
			t.Errorf("expected a single increment, got streak %d", b.Habits()[0].Streak)
		}
	})
}

func TestToggleWhileAnotherInFlight(t *testing.T) {
	b := setupBoard(t, habit("a", 0, 0), habit("b", 5, 5))

	attemptB, err := b.Begin("b")
	if err != nil {
		t.Fatalf("Begin(b) failed: %v", err)
	}

	before := pendingIDs(b)
	if _, err := b.Begin("a"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy toggling a while b is in flight, got %v", err)
	}
	after := pendingIDs(b)

	if contains(before, "b") != contains(after, "b") {
		t.Errorf("b membership changed: before %v, after %v", before, after)
	}
	if !contains(after, "a") {
		t.Error("expected a to remain pending")
	}
	if got := b.Habits()[0].Streak; got != 0 {
		t.Errorf("expected a streak untouched, got %d", got)
	}

	// b keeps progressing normally
	b.Commit(attemptB, nil)
	if !contains(pendingIDs(b), "b") {
		t.Error("expected b to stay listed until its exit finishes")
	}
	b.FinishExit("b")
	if contains(pendingIDs(b), "b") {
		t.Error("expected b to leave the pending list after exit")
	}
}

func TestCommitWithServerCheckin(t *testing.T) {
	b := setupBoard(t, habit("a", 0, 0))
	a, err := b.Begin("a")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	b.Commit(a, &models.HabitCheckin{ID: "srv-1", Completed: true, Date: "2025-08-16", CreatedAt: "2025-08-16T09:00:00Z"})
	b.FinishExit("a")

	h := b.Habits()[0]
	if len(h.Checkins) != 1 || h.Checkins[0].ID != "srv-1" {
		t.Fatalf("expected server checkin to be recorded, got %+v", h.Checkins)
	}
	if h.Checkins[0].HabitID != "a" {
		t.Errorf("expected habit id to be filled in, got %q", h.Checkins[0].HabitID)
	}
	if !b.AllComplete() {
		t.Error("expected board to be complete")
	}
	if done, total := b.Counts(); done != 1 || total != 1 {
		t.Errorf("expected 1/1, got %d/%d", done, total)
	}
}

func TestCommitSynthesizesCheckin(t *testing.T) {
	b := setupBoard(t, habit("a", 0, 0))
	a, _ := b.Begin("a")
	b.Commit(a, nil)

	h := b.Habits()[0]
	if len(h.Checkins) != 1 {
		t.Fatalf("expected one checkin, got %d", len(h.Checkins))
	}
	c := h.Checkins[0]
	if c.ID == "" || !c.Completed || c.HabitID != "a" || c.Date != "2025-08-16" {
		t.Errorf("unexpected synthesized checkin: %+v", c)
	}
	if !c.Created().Equal(testDay) {
		t.Errorf("expected creation time %v, got %v", testDay, c.Created())
	}
}

func TestToggleFailureRestoresStreak(t *testing.T) {
	b := setupBoard(t, habit("a", 7, 9), habit("b", 0, 0))
	creator := &fakeCreator{err: errors.New("503 service unavailable")}

	err := b.Toggle(context.Background(), creator, "a")
	if err == nil {
		t.Fatal("expected toggle to fail")
	}

	h := b.Habits()[0]
	if h.Streak != 7 || h.LongestStreak != 9 {
		t.Errorf("expected streak restored to 7/9, got %d/%d", h.Streak, h.LongestStreak)
	}
	if !contains(pendingIDs(b), "a") {
		t.Error("expected habit to be pending again")
	}
	if b.Exiting() != "" {
		t.Errorf("expected no habit in flight, got %q", b.Exiting())
	}
	if len(h.Checkins) != 0 {
		t.Errorf("expected no checkins after failure, got %d", len(h.Checkins))
	}

	// another habit can be toggled afterwards
	creator.err = nil
	if err := b.Toggle(context.Background(), creator, "b"); err != nil {
		t.Fatalf("expected second toggle to succeed, got %v", err)
	}
}

func TestToggleRollbackRestoresLongestStreak(t *testing.T) {
	b := setupBoard(t, habit("a", 4, 4))
	creator := &fakeCreator{err: errors.New("timeout")}

	_ = b.Toggle(context.Background(), creator, "a")

	h := b.Habits()[0]
	if h.LongestStreak != 4 {
		t.Errorf("expected longest streak restored to 4, got %d", h.LongestStreak)
	}
}

func TestToggleSuccess(t *testing.T) {
	b := setupBoard(t, habit("a", 2, 3))
	creator := &fakeCreator{}

	if err := b.Toggle(context.Background(), creator, "a"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if len(creator.calls) != 1 {
		t.Fatalf("expected one remote call, got %d", len(creator.calls))
	}
	if creator.calls[0].Quantity != 1 {
		t.Errorf("expected quantity 1 in request, got %d", creator.calls[0].Quantity)
	}

	h := b.Habits()[0]
	if h.Streak != 3 || h.LongestStreak != 3 {
		t.Errorf("expected streak 3/3, got %d/%d", h.Streak, h.LongestStreak)
	}
	if len(b.Pending()) != 0 {
		t.Errorf("expected no pending habits, got %v", pendingIDs(b))
	}
	if !b.AllComplete() {
		t.Error("expected completion banner")
	}
}

func TestHabitsReturnsCopies(t *testing.T) {
	b := setupBoard(t, habit("a", 1, 1))
	hs := b.Habits()
	hs[0].Streak = 99
	hs[0].Checkins = append(hs[0].Checkins, checkin("x", true, ""))

	h := b.Habits()[0]
	if h.Streak != 1 || len(h.Checkins) != 0 {
		t.Error("mutating the returned slice must not affect the board")
	}
}

func TestCommitWinsOverLaterIncompleteCheckin(t *testing.T) {
	tests := []struct {
		name  string
		reply *models.HabitCheckin
	}{
		{"server timestamp earlier", &models.HabitCheckin{ID: "srv-1", Completed: true, Date: "2025-08-16", CreatedAt: "2025-08-16T19:59:55Z"}},
		{"server timestamp not RFC 3339", &models.HabitCheckin{ID: "srv-1", Completed: true, Date: "2025-08-16", CreatedAt: "2025-08-16 21:00:00"}},
		{"no echo with local clock behind", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// undone at 20:00, later than both the local clock and the reply
			b := setupBoard(t, habit("a", 4, 4, checkin("old", false, "2025-08-16T20:00:00Z")))
			a, err := b.Begin("a")
			if err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			b.Commit(a, tt.reply)
			b.FinishExit("a")

			if got := pendingIDs(b); len(got) != 0 {
				t.Errorf("Pending() after commit = %v, want none", got)
			}
			if !b.AllComplete() {
				t.Error("AllComplete() = false, want true")
			}
			if _, err := b.Begin("a"); !errors.Is(err, ErrNotPending) {
				t.Errorf("second Begin() error = %v, want ErrNotPending", err)
			}
			if h := b.Habits()[0]; h.Streak != 5 {
				t.Errorf("streak = %d, want 5", h.Streak)
			}
		})
	}
}

func TestLoadedKeepsHabitInFlight(t *testing.T) {
	server := []models.HabitForHome{habit("h1", 3, 5), habit("h2", 0, 0)}
	b := setupBoard(t, server...)

	a, err := b.Begin("h1")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	b.Loaded(testDay, server, nil)

	if got := b.Exiting(); got != "h1" {
		t.Errorf("Exiting() after reload = %q, want h1", got)
	}
	if _, err := b.Begin("h2"); !errors.Is(err, ErrBusy) {
		t.Errorf("Begin(h2) during h1 check-in error = %v, want ErrBusy", err)
	}
	if h := b.Habits()[0]; h.Streak != 4 || h.LongestStreak != 5 {
		t.Errorf("h1 streak = %d/%d, want optimistic 4/5", h.Streak, h.LongestStreak)
	}

	b.Commit(a, nil)
	b.FinishExit("h1")
	if got := pendingIDs(b); len(got) != 1 || got[0] != "h2" {
		t.Errorf("Pending() = %v, want [h2]", got)
	}

	// once the habit has left the board a reload no longer keeps it in flight
	b.Loaded(testDay, server[1:], nil)
	if got := b.Exiting(); got != "" {
		t.Errorf("Exiting() = %q, want none", got)
	}
}
