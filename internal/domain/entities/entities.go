package entities

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrEmptyTaskName = errors.New("empty task name")
	ErrDueDateInPast = errors.New("due date in past")
)

// IsValidation reports whether err is one of the task-creation validation
// failures. Not-found conditions are never errors in this domain; mutations
// on unknown ids are silent no-ops.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyTaskName) || errors.Is(err, ErrDueDateInPast)
}

// Enums and types
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

type SortOrder string

const (
	SortDefault SortOrder = "default"
	SortDueDate SortOrder = "due_date"
)

func (o SortOrder) IsValid() bool {
	switch o {
	case SortDefault, SortDueDate:
		return true
	default:
		return false
	}
}

// Task represents a user-created to-do entry. Text, description, due date and
// the sub-task sequence are fixed at creation; only completion flags change
// afterward.
type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	SubTasks    []SubTask  `json:"sub_tasks,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SubTask is a named step owned by exactly one task. Its id is unique only
// within the parent's sequence.
type SubTask struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Notification is a transient status message describing the most recent
// mutation. At most one is active at a time.
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}

// ParseSubTasks builds the sub-task sequence from raw input lines. Each line
// is trimmed and empty lines are discarded; a nil slice is returned when
// nothing remains, so "no sub-tasks" and "only blank lines" are
// indistinguishable downstream.
func ParseSubTasks(lines []string) []SubTask {
	var subs []SubTask
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		subs = append(subs, SubTask{
			ID:   int64(len(subs) + 1),
			Text: text,
		})
	}
	return subs
}

// DateOnly truncates t to its calendar day in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Business logic methods for Task

// Toggle flips the task's completion flag and returns the new value.
func (t *Task) Toggle() bool {
	t.Completed = !t.Completed
	return t.Completed
}

// ToggleSubTask flips the completion flag of the sub-task with the given id.
// The parent's own flag is never touched. Returns false when the id is not
// part of this task.
func (t *Task) ToggleSubTask(subTaskID int64) (*SubTask, bool) {
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == subTaskID {
			t.SubTasks[i].Completed = !t.SubTasks[i].Completed
			return &t.SubTasks[i], true
		}
	}
	return nil, false
}

// HasDueDate reports whether the task carries a due date.
func (t *Task) HasDueDate() bool {
	return t.DueDate != nil
}

// IsOverdue reports whether the task's due day has passed without completion.
// A due date becoming past through the passage of time is allowed and is not
// re-validated anywhere.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return DateOnly(*t.DueDate).Before(DateOnly(now))
}

// Clone returns a deep copy so callers can never reach into store-owned state.
func (t *Task) Clone() *Task {
	cp := *t
	if t.Description != nil {
		desc := *t.Description
		cp.Description = &desc
	}
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	if t.SubTasks != nil {
		cp.SubTasks = make([]SubTask, len(t.SubTasks))
		copy(cp.SubTasks, t.SubTasks)
	}
	return &cp
}

func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationSuccess, NotificationError:
		return true
	default:
		return false
	}
}
