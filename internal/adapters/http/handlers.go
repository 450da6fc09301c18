package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasklight/core/internal/domain/entities"
	"github.com/tasklight/core/internal/infrastructure/logger"
	"github.com/tasklight/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	store    ports.TaskStore
	notifier ports.Notifier
	logger   *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(store ports.TaskStore, notifier ports.Notifier, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// TaskResponse is a task snapshot plus the render-time priority flag on the
// first element of the returned order. The flag is derived per response and
// never stored.
type TaskResponse struct {
	*entities.Task
	Priority bool `json:"priority"`
}

// MessageResponse is a generic message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a field-level validation failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.store.Add(c.Request().Context(), req)
	if err != nil {
		if entities.IsValidation(err) {
			h.notifier.Publish(validationMessage(err), entities.NotificationError)
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Create task failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, task)
}

// ListTasks handles listing tasks in the requested sort order
func (h *TaskHandler) ListTasks(c echo.Context) error {
	order := entities.SortOrder(c.QueryParam("sort"))
	if order == "" {
		order = entities.SortDefault
	}
	if !order.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid sort parameter")
	}

	tasks, err := h.store.ListTasks(c.Request().Context(), order)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tasks")
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i, t := range tasks {
		resp = append(resp, TaskResponse{Task: t, Priority: i == 0})
	}

	return c.JSON(http.StatusOK, resp)
}

// ToggleTask handles flipping a task's completion flag
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	task, err := h.store.ToggleTask(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Toggle task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle task")
	}
	if task == nil {
		// Unknown id is a harmless no-op, not a fault.
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, task)
}

// ToggleSubTask handles flipping a sub-task's completion flag
func (h *TaskHandler) ToggleSubTask(c echo.Context) error {
	taskID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	subTaskID, err := parseID(c.Param("subId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid sub-task ID")
	}

	sub, err := h.store.ToggleSubTask(c.Request().Context(), taskID, subTaskID)
	if err != nil {
		h.logger.Error("Toggle sub-task failed", "error", err, "task_id", taskID, "sub_task_id", subTaskID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle sub-task")
	}
	if sub == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, sub)
}

// DeleteTask handles task deletion
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if _, err := h.store.DeleteTask(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task")
	}

	return c.NoContent(http.StatusNoContent)
}

// ClearCompleted handles bulk removal of completed tasks
func (h *TaskHandler) ClearCompleted(c echo.Context) error {
	removed, err := h.store.ClearCompleted(c.Request().Context())
	if err != nil {
		h.logger.Error("Clear completed failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear completed tasks")
	}

	return c.JSON(http.StatusOK, map[string]int{"cleared": removed})
}

// GetStats handles the completion progress summary
func (h *TaskHandler) GetStats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("Get stats failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute stats")
	}

	return c.JSON(http.StatusOK, stats)
}

// NotificationHandler handles notification-related requests
type NotificationHandler struct {
	notifier ports.Notifier
	logger   *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifier ports.Notifier, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// GetNotification returns the active notification, or null when none is
// active. The view layer polls this alongside the task list.
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]*entities.Notification{
		"notification": h.notifier.Current(),
	})
}

// DismissNotification clears the active notification before its timer fires
func (h *NotificationHandler) DismissNotification(c echo.Context) error {
	h.notifier.Clear()
	return c.NoContent(http.StatusNoContent)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, entities.ErrEmptyTaskName):
		return "Task name cannot be empty"
	case errors.Is(err, entities.ErrDueDateInPast):
		return "Due date cannot be in the past"
	default:
		return "Invalid task"
	}
}
