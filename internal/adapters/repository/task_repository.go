package repository

import (
	"context"
	"sync"
	"time"

	"github.com/tasklight/core/internal/domain/entities"
	"github.com/tasklight/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface over a
// process-lifetime slice. Insertion order is the baseline ordering and ids
// are assigned from a monotonic counter, so creation order and id order
// always agree.
type TaskRepositoryImpl struct {
	mu     sync.RWMutex
	tasks  []*entities.Task
	nextID int64
}

// NewTaskRepository creates a new in-memory task repository.
func NewTaskRepository() ports.TaskRepository {
	return &TaskRepositoryImpl{nextID: 1}
}

func (r *TaskRepositoryImpl) Append(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := task.Clone()
	stored.ID = r.nextID
	r.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.tasks = append(r.tasks, stored)

	return stored.Clone(), nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Task, bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if t := r.find(id); t != nil {
		return t.Clone(), true, nil
	}
	return nil, false, nil
}

func (r *TaskRepositoryImpl) Toggle(ctx context.Context, id int64) (*entities.Task, bool, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.find(id)
	if t == nil {
		return nil, false, nil
	}
	t.Toggle()
	return t.Clone(), true, nil
}

func (r *TaskRepositoryImpl) ToggleSubTask(ctx context.Context, taskID, subTaskID int64) (*entities.SubTask, bool, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.find(taskID)
	if t == nil {
		return nil, false, nil
	}
	sub, ok := t.ToggleSubTask(subTaskID)
	if !ok {
		return nil, false, nil
	}
	cp := *sub
	return &cp, true, nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *TaskRepositoryImpl) DeleteCompleted(ctx context.Context) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tasks[:0]
	removed := 0
	for _, t := range r.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return removed, nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context) ([]*entities.Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

// find returns the stored task itself; callers must hold the lock.
func (r *TaskRepositoryImpl) find(id int64) *entities.Task {
	for _, t := range r.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
