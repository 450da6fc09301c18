package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tasklight/core/internal/domain/entities"
	"github.com/tasklight/core/internal/infrastructure/logger"
	"github.com/tasklight/core/internal/ports"
)

// TaskService is the authoritative task store. It validates creation input,
// applies mutations through the repository, and publishes a transient
// notification after each completed mutation. Mutations are serialized by a
// single mutex; each call completes fully before the next is accepted.
type TaskService struct {
	mu       sync.Mutex
	taskRepo ports.TaskRepository
	notifier ports.Notifier
	metrics  *StoreMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service. metrics may be nil when metrics
// are disabled.
func NewTaskService(taskRepo ports.TaskRepository, notifier ports.Notifier, metrics *StoreMetrics, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Add validates and appends a new task. The text must be non-empty after
// trimming and a due date, when present, must not fall on a calendar day
// before today. On failure the store is unchanged and no notification is
// published; the caller decides how to surface the error.
func (s *TaskService) Add(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, entities.ErrEmptyTaskName
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *req.DueDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse due date: %w", err)
		}
		if parsed.Before(entities.DateOnly(s.now())) {
			return nil, entities.ErrDueDateInPast
		}
		dueDate = &parsed
	}

	var description *string
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		desc := strings.TrimSpace(*req.Description)
		description = &desc
	}

	task := &entities.Task{
		Text:        text,
		Description: description,
		DueDate:     dueDate,
		SubTasks:    entities.ParseSubTasks(req.SubTasks),
		CreatedAt:   s.now(),
	}

	created, err := s.taskRepo.Append(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.incCreated()
	s.logger.LogStoreMutation("add", "task_id", created.ID, "text", created.Text)
	s.notifier.Publish("Task added successfully.", entities.NotificationSuccess)

	return created, nil
}

// ToggleTask flips a task's completion flag. An unknown id is a harmless
// no-op: nil task, nil error, no notification. The UI may race a toggle
// against a deletion, so absence is never treated as a fault.
func (s *TaskService) ToggleTask(ctx context.Context, id int64) (*entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok, err := s.taskRepo.Toggle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	if !ok {
		return nil, nil
	}

	s.metrics.incToggled()
	s.logger.LogStoreMutation("toggle", "task_id", task.ID, "completed", task.Completed)
	s.notifier.Publish(fmt.Sprintf("%q marked as %s", task.Text, completionWord(task.Completed)), entities.NotificationSuccess)

	return task, nil
}

// ToggleSubTask flips one sub-task's completion flag, scoped by its parent
// task id. The parent's own flag is never touched. A missing parent or
// sub-task is a harmless no-op.
func (s *TaskService) ToggleSubTask(ctx context.Context, taskID, subTaskID int64) (*entities.SubTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok, err := s.taskRepo.ToggleSubTask(ctx, taskID, subTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle sub-task: %w", err)
	}
	if !ok {
		return nil, nil
	}

	s.metrics.incToggled()
	s.logger.LogStoreMutation("toggle_subtask", "task_id", taskID, "sub_task_id", sub.ID, "completed", sub.Completed)
	s.notifier.Publish(fmt.Sprintf("Sub-task %q marked as %s", sub.Text, completionWord(sub.Completed)), entities.NotificationSuccess)

	return sub, nil
}

// DeleteTask removes a task. Only an actual removal publishes a
// notification; an unknown id changes nothing.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	if !removed {
		return false, nil
	}

	s.metrics.incDeleted()
	s.logger.LogStoreMutation("delete", "task_id", id)
	s.notifier.Publish("Task deleted successfully.", entities.NotificationSuccess)

	return true, nil
}

// ClearCompleted removes every completed task in one atomic step. A second
// call in a row removes nothing and publishes nothing.
func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.taskRepo.DeleteCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	if removed == 0 {
		return 0, nil
	}

	s.metrics.incCleared(removed)
	s.logger.LogStoreMutation("clear_completed", "removed", removed)
	if removed == 1 {
		s.notifier.Publish("Cleared 1 task", entities.NotificationSuccess)
	} else {
		s.notifier.Publish(fmt.Sprintf("Cleared %d tasks", removed), entities.NotificationSuccess)
	}

	return removed, nil
}

// ListTasks returns a sorted snapshot of the current sequence. The default
// order puts incomplete tasks before completed ones with ties broken by
// ascending id; due-date order sorts ascending by due date with undated
// tasks after all dated ones, keeping their relative input order.
func (s *TaskService) ListTasks(ctx context.Context, order entities.SortOrder) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	sortTasks(tasks, order)
	return tasks, nil
}

// Stats reports completion progress over the current sequence.
func (s *TaskService) Stats(ctx context.Context) (ports.TaskStats, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return ports.TaskStats{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	stats := ports.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		}
	}
	return stats, nil
}

func completionWord(completed bool) string {
	if completed {
		return "completed"
	}
	return "incomplete"
}
