package models

// Priority is the urgency of a task
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, lower is more urgent. Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	DueDate           string     `json:"dueDate,omitempty"`      // YYYY-MM-DD format
	DueTimestamp      string     `json:"dueTimestamp,omitempty"` // RFC3339 timestamp
	Priority          Priority   `json:"priority"`
	Status            TaskStatus `json:"status"`
	Completed         bool       `json:"completed"`
	CompletedAt       string     `json:"completedAt,omitempty"`
	CreatedAt         string     `json:"createdAt,omitempty"`
	UpdatedAt         string     `json:"updatedAt,omitempty"`
	UserID            string     `json:"userId"`
	Category          string     `json:"category,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	EstimatedDuration int        `json:"estimatedDuration,omitempty"` // minutes
	ActualDuration    int        `json:"actualDuration,omitempty"`    // minutes
	ParentTaskID      string     `json:"parentTaskId,omitempty"`
	Subtasks          []Task     `json:"subtasks,omitempty"`
}
