package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/core/internal/adapters/repository"
	"github.com/tasklight/core/internal/domain/entities"
	"github.com/tasklight/core/internal/infrastructure/logger"
	"github.com/tasklight/core/internal/ports"
)

func newTestStore(t *testing.T) (*TaskService, *NotificationService) {
	t.Helper()
	notifier := NewNotificationService(time.Minute, logger.NewNop())
	store := NewTaskService(repository.NewTaskRepository(), notifier, nil, logger.NewNop())
	return store, notifier
}

func strPtr(s string) *string { return &s }

func dateStr(daysFromNow int) *string {
	s := time.Now().AddDate(0, 0, daysFromNow).Format("2006-01-02")
	return &s
}

func TestAdd_CreatesIncompleteTask(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	task, err := store.Add(ctx, ports.CreateTaskRequest{Text: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Text)
	assert.False(t, task.Completed)
	assert.Nil(t, task.SubTasks)
	assert.Nil(t, task.DueDate)

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Equal(t, "Task added successfully.", n.Message)
	assert.Equal(t, entities.NotificationSuccess, n.Kind)
}

func TestAdd_TrimsTextAndDescription(t *testing.T) {
	store, _ := newTestStore(t)

	task, err := store.Add(context.Background(), ports.CreateTaskRequest{
		Text:        "  Buy milk  ",
		Description: strPtr("  from the corner shop  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, "from the corner shop", *task.Description)
}

func TestAdd_RejectsEmptyText(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := store.Add(ctx, ports.CreateTaskRequest{Text: text})
		assert.ErrorIs(t, err, entities.ErrEmptyTaskName)
		assert.True(t, entities.IsValidation(err))
	}

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Nil(t, notifier.Current())
}

func TestAdd_DueDateValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, ports.CreateTaskRequest{Text: "late", DueDate: dateStr(-1)})
	assert.ErrorIs(t, err, entities.ErrDueDateInPast)

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Today is the boundary: not strictly earlier, so it succeeds.
	task, err := store.Add(ctx, ports.CreateTaskRequest{Text: "today", DueDate: dateStr(0)})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	task, err = store.Add(ctx, ports.CreateTaskRequest{Text: "tomorrow", DueDate: dateStr(1)})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
}

func TestAdd_UnparsableDueDateIsNotValidation(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Add(context.Background(), ports.CreateTaskRequest{Text: "x", DueDate: strPtr("next tuesday")})
	require.Error(t, err)
	assert.False(t, entities.IsValidation(err))
}

func TestAdd_SubTaskParsing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	task, err := store.Add(ctx, ports.CreateTaskRequest{
		Text:     "laundry",
		SubTasks: []string{"  wash", "", "dry  "},
	})
	require.NoError(t, err)
	require.Len(t, task.SubTasks, 2)
	assert.Equal(t, "wash", task.SubTasks[0].Text)
	assert.Equal(t, "dry", task.SubTasks[1].Text)
	assert.False(t, task.SubTasks[0].Completed)
	assert.False(t, task.SubTasks[1].Completed)

	// Only blank lines: the task is created with no sub-tasks at all.
	task, err = store.Add(ctx, ports.CreateTaskRequest{Text: "plain", SubTasks: []string{"", "  "}})
	require.NoError(t, err)
	assert.Nil(t, task.SubTasks)
}

func TestToggleTask_Involution(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	a, err := store.Add(ctx, ports.CreateTaskRequest{Text: "Buy milk"})
	require.NoError(t, err)
	b, err := store.Add(ctx, ports.CreateTaskRequest{Text: "other"})
	require.NoError(t, err)

	toggled, err := store.ToggleTask(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, toggled)
	assert.True(t, toggled.Completed)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "Buy milk")
	assert.Contains(t, n.Message, "completed")

	toggled, err = store.ToggleTask(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	n = notifier.Current()
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "incomplete")

	// The other task was never touched.
	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	for _, task := range list {
		if task.ID == b.ID {
			assert.False(t, task.Completed)
		}
	}
}

func TestToggleTask_UnknownIDIsSilentNoOp(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, ports.CreateTaskRequest{Text: "anchor"})
	require.NoError(t, err)
	before := notifier.Current()

	task, err := store.ToggleTask(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, before, notifier.Current())
}

func TestToggleSubTask_DoesNotTouchParent(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	task, err := store.Add(ctx, ports.CreateTaskRequest{
		Text:     "laundry",
		SubTasks: []string{"wash", "dry"},
	})
	require.NoError(t, err)

	sub, err := store.ToggleSubTask(ctx, task.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "dry", sub.Text)
	assert.True(t, sub.Completed)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "dry")
	assert.Contains(t, n.Message, "completed")

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Completed)
	assert.False(t, list[0].SubTasks[0].Completed)
	assert.True(t, list[0].SubTasks[1].Completed)
}

func TestToggleSubTask_MissingCasesAreSilent(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	withSubs, err := store.Add(ctx, ports.CreateTaskRequest{Text: "a", SubTasks: []string{"x"}})
	require.NoError(t, err)
	noSubs, err := store.Add(ctx, ports.CreateTaskRequest{Text: "b"})
	require.NoError(t, err)
	before := notifier.Current()

	tests := []struct {
		name      string
		taskID    int64
		subTaskID int64
	}{
		{"unknown parent", 999, 1},
		{"parent without sub-tasks", noSubs.ID, 1},
		{"unknown sub-task id", withSubs.ID, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := store.ToggleSubTask(ctx, tt.taskID, tt.subTaskID)
			require.NoError(t, err)
			assert.Nil(t, sub)
			assert.Equal(t, before, notifier.Current())
		})
	}
}

func TestDeleteTask(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	task, err := store.Add(ctx, ports.CreateTaskRequest{Text: "temporary"})
	require.NoError(t, err)

	removed, err := store.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "deleted")

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteTask_UnknownIDLeavesNotificationUntouched(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, ports.CreateTaskRequest{Text: "anchor"})
	require.NoError(t, err)
	before := notifier.Current()

	removed, err := store.DeleteTask(ctx, 999)
	require.NoError(t, err)
	assert.False(t, removed)

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, before, notifier.Current())
}

func TestClearCompleted(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, text := range []string{"a", "b", "c"} {
		task, err := store.Add(ctx, ports.CreateTaskRequest{Text: text})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	_, err := store.ToggleTask(ctx, ids[0])
	require.NoError(t, err)
	_, err = store.ToggleTask(ctx, ids[2])
	require.NoError(t, err)

	removed, err := store.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Equal(t, "Cleared 2 tasks", n.Message)

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Text)

	// Idempotent: a second clear removes nothing and publishes nothing.
	removed, err = store.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, n, notifier.Current())
}

func TestClearCompleted_SingularWording(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	task, err := store.Add(ctx, ports.CreateTaskRequest{Text: "only one"})
	require.NoError(t, err)
	_, err = store.ToggleTask(ctx, task.ID)
	require.NoError(t, err)

	removed, err := store.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Equal(t, "Cleared 1 task", n.Message)
}

func TestListTasks_DefaultOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, text := range []string{"a", "b", "c"} {
		task, err := store.Add(ctx, ports.CreateTaskRequest{Text: text})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	_, err := store.ToggleTask(ctx, ids[0])
	require.NoError(t, err)

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Incomplete first by ascending id, completed last.
	assert.Equal(t, "b", list[0].Text)
	assert.Equal(t, "c", list[1].Text)
	assert.Equal(t, "a", list[2].Text)
}

func TestListTasks_DueDateOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, ports.CreateTaskRequest{Text: "far", DueDate: dateStr(10)})
	require.NoError(t, err)
	_, err = store.Add(ctx, ports.CreateTaskRequest{Text: "near", DueDate: dateStr(5)})
	require.NoError(t, err)
	_, err = store.Add(ctx, ports.CreateTaskRequest{Text: "undated one"})
	require.NoError(t, err)
	_, err = store.Add(ctx, ports.CreateTaskRequest{Text: "undated two"})
	require.NoError(t, err)

	list, err := store.ListTasks(ctx, entities.SortDueDate)
	require.NoError(t, err)
	require.Len(t, list, 4)

	assert.Equal(t, "near", list[0].Text)
	assert.Equal(t, "far", list[1].Text)

	// Undated tasks come last and keep their relative input order.
	assert.Equal(t, "undated one", list[2].Text)
	assert.Equal(t, "undated two", list[3].Text)
}

func TestStats(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.TaskStats{}, stats)

	var ids []int64
	for i := 0; i < 4; i++ {
		task, err := store.Add(ctx, ports.CreateTaskRequest{Text: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	_, err = store.ToggleTask(ctx, ids[1])
	require.NoError(t, err)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.TaskStats{Total: 4, Completed: 1}, stats)
}

func TestScenario_AddToggleDelete(t *testing.T) {
	store, notifier := newTestStore(t)
	ctx := context.Background()

	task, err := store.Add(ctx, ports.CreateTaskRequest{Text: "Buy milk"})
	require.NoError(t, err)
	assert.False(t, task.Completed)

	list, err := store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	require.Len(t, list, 1)

	toggled, err := store.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	n := notifier.Current()
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "Buy milk")
	assert.Contains(t, n.Message, "completed")

	removed, err := store.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	list, err = store.ListTasks(ctx, entities.SortDefault)
	require.NoError(t, err)
	assert.Empty(t, list)

	n = notifier.Current()
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "deleted")
}
