package tasks

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/kairos/internal/models"
)

func task(id string, p models.Priority, due string) models.Task {
	return models.Task{ID: id, Title: "task " + id, Priority: p, Status: models.TaskPending, DueTimestamp: due}
}

func ids(ts []models.Task) []string {
	out := []string{}
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestSortByPriority(t *testing.T) {
	in := []models.Task{
		task("l1", models.PriorityLow, ""),
		task("h1", models.PriorityHigh, ""),
		task("m1", models.PriorityMedium, ""),
		task("h2", models.PriorityHigh, ""),
	}
	got := ids(SortByPriority(in))
	want := []string{"h1", "h2", "m1", "l1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByPriority() = %v, want %v", got, want)
	}
	if in[0].ID != "l1" {
		t.Error("SortByPriority must not reorder its input")
	}
}

func TestSortByDueDate(t *testing.T) {
	in := []models.Task{
		task("none1", models.PriorityHigh, ""),
		task("late", models.PriorityHigh, "2025-08-20T10:00:00-03:00"),
		task("none2", models.PriorityHigh, ""),
		task("early", models.PriorityHigh, "2025-08-18T10:00:00-03:00"),
		task("offset", models.PriorityHigh, "2025-08-18T12:00:00Z"), // 09:00 at -03:00
	}
	got := ids(SortByDueDate(in))
	want := []string{"offset", "early", "late", "none1", "none2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByDueDate() = %v, want %v", got, want)
	}
}

func loadedBoard(ts ...models.Task) *Board {
	b := NewBoard()
	b.now = func() time.Time { return time.Date(2025, time.August, 16, 12, 0, 0, 0, time.UTC) }
	b.Loaded(ts, nil)
	return b
}

func TestTopOrdersAndLimits(t *testing.T) {
	b := loadedBoard(
		task("a", models.PriorityLow, ""),
		task("b", models.PriorityHigh, ""),
		task("c", models.PriorityMedium, "2025-08-17T09:00:00Z"),
		task("d", models.PriorityHigh, "2025-08-18T09:00:00Z"),
		task("e", models.PriorityMedium, ""),
		models.Task{ID: "done", Priority: models.PriorityHigh, Completed: true},
	)

	got := ids(b.Top())
	// due date dominates, ties keep priority order
	want := []string{"c", "d", "b", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top() = %v, want %v", got, want)
	}
}

func TestToggleFreezesDisplayOrder(t *testing.T) {
	b := loadedBoard(
		task("a", models.PriorityHigh, ""),
		task("b", models.PriorityHigh, ""),
		task("c", models.PriorityMedium, ""),
		task("d", models.PriorityLow, ""),
		task("e", models.PriorityLow, ""),
	)
	before := ids(b.Top())

	attempt, err := b.Toggle("b")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !attempt.Updated.Completed || attempt.Updated.Status != models.TaskCompleted || attempt.Updated.CompletedAt == "" {
		t.Errorf("unexpected updated record: %+v", attempt.Updated)
	}

	during := ids(b.Top())
	if !reflect.DeepEqual(before, during) {
		t.Errorf("expected frozen order %v while exiting, got %v", before, during)
	}

	b.FinishExit()
	after := ids(b.Top())
	want := []string{"a", "c", "d", "e"}
	if !reflect.DeepEqual(after, want) {
		t.Errorf("after exit Top() = %v, want %v", after, want)
	}
}

func TestToggleRejections(t *testing.T) {
	b := loadedBoard(task("a", models.PriorityHigh, ""), task("b", models.PriorityLow, ""))

	if _, err := b.Toggle("missing"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
	if _, err := b.Toggle("a"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if _, err := b.Toggle("b"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	b.FinishExit()
	if _, err := b.Toggle("a"); !errors.Is(err, ErrCompleted) {
		t.Errorf("expected ErrCompleted, got %v", err)
	}
}

func TestRollbackRestoresRecord(t *testing.T) {
	original := task("a", models.PriorityHigh, "2025-08-20T10:00:00Z")
	original.Status = models.TaskInProgress
	b := loadedBoard(original, task("b", models.PriorityLow, ""))

	attempt, err := b.Toggle("a")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	b.Rollback(attempt, errors.New("offline"))

	top := b.Top()
	if len(top) != 2 || top[0].ID != "a" {
		t.Fatalf("expected task a back on the card, got %v", ids(top))
	}
	if !reflect.DeepEqual(top[0], original) {
		t.Errorf("expected full record restored, got %+v", top[0])
	}
	if b.Exiting() != "" {
		t.Error("expected no task in flight after rollback")
	}
}

func TestCommitUsesServerRecord(t *testing.T) {
	b := loadedBoard(task("a", models.PriorityHigh, ""))
	attempt, _ := b.Toggle("a")

	confirmed := attempt.Updated
	confirmed.UpdatedAt = "2025-08-16T12:00:01Z"
	b.Commit(attempt, &confirmed)
	b.FinishExit()

	if !b.AllComplete() {
		t.Error("expected all tasks complete")
	}
}

func TestAllComplete(t *testing.T) {
	if NewBoard().AllComplete() {
		t.Error("loading board must not be complete")
	}
	if loadedBoard().AllComplete() {
		t.Error("empty board must not be complete")
	}
	if loadedBoard(task("a", models.PriorityHigh, "")).AllComplete() {
		t.Error("board with an open task must not be complete")
	}
	done := task("a", models.PriorityHigh, "")
	done.Completed = true
	if !loadedBoard(done).AllComplete() {
		t.Error("expected completion when every task is done")
	}
}

func TestLoadedError(t *testing.T) {
	b := NewBoard()
	b.Loaded([]models.Task{task("a", models.PriorityHigh, "")}, errors.New("boom"))
	if b.Loading() {
		t.Error("expected loading to clear")
	}
	if len(b.Top()) != 0 {
		t.Error("expected empty card after failed load")
	}
}

type fakeUpdater struct {
	err  error
	sent []models.Task
}

func (f *fakeUpdater) UpdateTask(_ context.Context, t models.Task) (*models.Task, error) {
	f.sent = append(f.sent, t)
	if f.err != nil {
		return nil, f.err
	}
	return &t, nil
}

func TestComplete(t *testing.T) {
	b := loadedBoard(task("a", models.PriorityHigh, ""), task("b", models.PriorityLow, ""))
	u := &fakeUpdater{}

	if err := b.Complete(context.Background(), u, "a"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(u.sent) != 1 || !u.sent[0].Completed {
		t.Errorf("expected completed task sent, got %+v", u.sent)
	}
	if got := ids(b.Top()); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Top() = %v, want [b]", got)
	}
	if b.Exiting() != "" {
		t.Error("expected no task in flight")
	}
}

func TestCompleteFailureRestores(t *testing.T) {
	b := loadedBoard(task("a", models.PriorityHigh, ""))
	u := &fakeUpdater{err: errors.New("offline")}

	if err := b.Complete(context.Background(), u, "a"); err == nil {
		t.Fatal("Complete() expected error")
	}
	top := b.Top()
	if len(top) != 1 || top[0].Completed {
		t.Errorf("expected task a restored, got %+v", top)
	}
}

func TestLoadedKeepsTaskInFlight(t *testing.T) {
	server := []models.Task{task("a", models.PriorityHigh, ""), task("b", models.PriorityLow, "")}
	b := loadedBoard(server...)

	if _, err := b.Toggle("a"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	b.Loaded(server, nil)

	if got := b.Exiting(); got != "a" {
		t.Errorf("Exiting() after reload = %q, want a", got)
	}
	if _, err := b.Toggle("b"); !errors.Is(err, ErrBusy) {
		t.Errorf("Toggle(b) error = %v, want ErrBusy", err)
	}
	if got := ids(b.Top()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Top() = %v, want [a b]", got)
	}

	b.FinishExit()
	if got := ids(b.Top()); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Top() after exit = %v, want [b]", got)
	}
}
