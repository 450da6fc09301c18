package ports

import (
	"context"

	"github.com/tasklight/core/internal/domain/entities"
)

// TaskRepository owns the ordered task sequence. Implementations must be safe
// for concurrent use and must complete each call atomically; returned tasks
// are copies, never aliases of stored state.
type TaskRepository interface {
	// Append adds a task to the end of the sequence, assigning the next
	// monotonic id, and returns the stored copy.
	Append(ctx context.Context, task *entities.Task) (*entities.Task, error)

	// GetByID returns the task with the given id, or false when absent.
	GetByID(ctx context.Context, id int64) (*entities.Task, bool, error)

	// Toggle flips the completion flag of the task with the given id.
	// Returns false, not an error, when the id is unknown.
	Toggle(ctx context.Context, id int64) (*entities.Task, bool, error)

	// ToggleSubTask flips the completion flag of one sub-task, scoped by its
	// parent task id. The parent's flag is untouched. Returns false when the
	// parent or the sub-task is unknown.
	ToggleSubTask(ctx context.Context, taskID, subTaskID int64) (*entities.SubTask, bool, error)

	// Delete removes the task with the given id. Returns false when absent.
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteCompleted removes every completed task in one step and returns
	// how many were removed.
	DeleteCompleted(ctx context.Context) (int, error)

	// List returns the full sequence in insertion order.
	List(ctx context.Context) ([]*entities.Task, error)
}
