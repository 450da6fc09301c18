package ports

import (
	"context"

	"github.com/tasklight/core/internal/domain/entities"
)

// TaskStore is the single authoritative interface over the in-memory task
// model. All mutations go through it; the view layer reads snapshots and
// never mutates tasks directly.
type TaskStore interface {
	Add(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	ToggleTask(ctx context.Context, id int64) (*entities.Task, error)
	ToggleSubTask(ctx context.Context, taskID, subTaskID int64) (*entities.SubTask, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ClearCompleted(ctx context.Context) (int, error)
	ListTasks(ctx context.Context, order entities.SortOrder) ([]*entities.Task, error)
	Stats(ctx context.Context) (TaskStats, error)
}

// Notifier publishes the single active transient notification and expires it
// automatically.
type Notifier interface {
	Publish(message string, kind entities.NotificationKind)
	Clear()
	Current() *entities.Notification
}

// Request/Response Types

// CreateTaskRequest is the task-creation payload. SubTasks carries the raw
// lines of the multi-line sub-task input; blank lines are dropped during
// creation. DueDate is a calendar date in 2006-01-02 form.
type CreateTaskRequest struct {
	Text        string   `json:"text" validate:"required"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	DueDate     *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	SubTasks    []string `json:"sub_tasks" validate:"omitempty,max=50"`
}

// TaskStats summarizes completion progress for display.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}
