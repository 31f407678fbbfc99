// Package tasks selects and completes the top priority tasks of the dashboard.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/models"
)

var (
	// ErrBusy is returned when a task is already being completed
	ErrBusy = errors.New("another task is being completed")
	// ErrUnknownTask is returned when the task is not on the board
	ErrUnknownTask = errors.New("task not found")
	// ErrCompleted is returned when the task is already completed
	ErrCompleted = errors.New("task is already completed")
)

// SortByPriority returns a copy of items ordered high, medium, low. The sort is stable.
func SortByPriority(items []models.Task) []models.Task {
	out := append([]models.Task(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// SortByDueDate returns a copy of items ordered by due timestamp, earliest
// first. Tasks without a due timestamp go last. The sort is stable.
func SortByDueDate(items []models.Task) []models.Task {
	out := append([]models.Task(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueTimestamp, out[j].DueTimestamp
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return models.ParseTimestamp(a).Before(models.ParseTimestamp(b))
	})
	return out
}

// Updater saves a task remotely. It may return a nil task when the server
// does not echo the record.
type Updater interface {
	UpdateTask(ctx context.Context, t models.Task) (*models.Task, error)
}

// Attempt is an optimistic completion awaiting confirmation
type Attempt struct {
	TaskID string
	// Updated is the record to send to the server
	Updated  models.Task
	original models.Task
}

type Board struct {
	mu      sync.Mutex
	tasks   []models.Task
	loading bool
	exiting string
	order   []string
	limit   int
	now     func() time.Time
}

// NewBoard returns an empty board in the loading state
func NewBoard() *Board {
	return &Board{
		loading: true,
		limit:   constants.CardDisplayLimit,
		now:     time.Now,
	}
}

// Loaded applies a fetch result. A failed fetch leaves the board empty.
// The task in flight keeps its local record and the frozen order until
// Rollback or FinishExit.
func (b *Board) Loaded(tasks []models.Task, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loading = false
	if err != nil {
		logger.Warn("Failed to load tasks", "error", err)
		b.tasks = nil
		b.exiting = ""
		b.order = nil
		return
	}

	var inflight *models.Task
	if idx := b.index(b.exiting); idx >= 0 {
		t := b.tasks[idx]
		inflight = &t
	}
	b.exiting = ""
	b.tasks = append([]models.Task(nil), tasks...)
	for i := range b.tasks {
		if inflight != nil && b.tasks[i].ID == inflight.ID {
			b.tasks[i] = *inflight
			b.exiting = inflight.ID
		}
	}
	if b.exiting == "" {
		b.order = nil
	}
}

// Loading reports whether the initial fetch is still outstanding
func (b *Board) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Exiting returns the id of the task in flight, or "" when none is
func (b *Board) Exiting() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exiting
}

// Top returns the tasks to display: incomplete ones (plus the one in
// flight) sorted by priority and then due date, limited to the card size.
// While a task is in flight the order captured when it was toggled is kept.
func (b *Board) Top() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.top()
}

func (b *Board) top() []models.Task {
	var list []models.Task
	for _, t := range b.tasks {
		if !t.Completed || t.ID == b.exiting {
			list = append(list, t)
		}
	}
	list = SortByDueDate(SortByPriority(list))

	if b.order != nil && b.exiting != "" {
		pos := make(map[string]int, len(b.order))
		for i, id := range b.order {
			pos[id] = i
		}
		frozen := list[:0]
		for _, t := range list {
			if _, ok := pos[t.ID]; ok {
				frozen = append(frozen, t)
			}
		}
		sort.SliceStable(frozen, func(i, j int) bool {
			return pos[frozen[i].ID] < pos[frozen[j].ID]
		})
		if len(frozen) > len(b.order) {
			frozen = frozen[:len(b.order)]
		}
		return frozen
	}

	if len(list) > b.limit {
		list = list[:b.limit]
	}
	return list
}

// AllComplete reports whether a loaded, non-empty board has no incomplete tasks
func (b *Board) AllComplete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loading || len(b.tasks) == 0 {
		return false
	}
	for _, t := range b.tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// Toggle optimistically completes taskID, freezing the current display order
// until FinishExit.
func (b *Board) Toggle(taskID string) (*Attempt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exiting != "" {
		return nil, ErrBusy
	}
	idx := b.index(taskID)
	if idx < 0 {
		return nil, ErrUnknownTask
	}
	if b.tasks[idx].Completed {
		return nil, ErrCompleted
	}

	current := b.top()
	b.order = make([]string, len(current))
	for i, t := range current {
		b.order[i] = t.ID
	}
	b.exiting = taskID

	original := b.tasks[idx]
	updated := original
	updated.Completed = true
	updated.Status = models.TaskCompleted
	updated.CompletedAt = b.now().UTC().Format(time.RFC3339)
	b.tasks[idx] = updated

	return &Attempt{TaskID: taskID, Updated: updated, original: original}, nil
}

// Commit replaces the task with the server's record when one is returned
func (b *Board) Commit(a *Attempt, confirmed *models.Task) {
	if confirmed == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := b.index(a.TaskID); idx >= 0 {
		b.tasks[idx] = *confirmed
	}
}

// Rollback restores the full pre-toggle record and releases the display order
func (b *Board) Rollback(a *Attempt, cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx := b.index(a.TaskID); idx >= 0 {
		b.tasks[idx] = a.original
	}
	if b.exiting == a.TaskID {
		b.exiting = ""
		b.order = nil
	}
	logger.Error("Task completion failed, task restored", "task", a.TaskID, "error", cause)
}

// FinishExit releases the in-flight task and the frozen order
func (b *Board) FinishExit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exiting = ""
	b.order = nil
}

// Complete runs a full completion of taskID against u: Toggle, the remote
// update, then Commit or Rollback, and finally FinishExit.
func (b *Board) Complete(ctx context.Context, u Updater, taskID string) error {
	a, err := b.Toggle(taskID)
	if err != nil {
		return err
	}

	confirmed, err := u.UpdateTask(ctx, a.Updated)
	if err != nil {
		b.Rollback(a, err)
		return fmt.Errorf("failed to complete task: %w", err)
	}

	b.Commit(a, confirmed)
	b.FinishExit()
	return nil
}

func (b *Board) index(taskID string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}
