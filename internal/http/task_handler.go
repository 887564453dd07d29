package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

type taskService interface {
	AddTask(ctx context.Context, params application.AddTaskParams) (application.Task, error)
	GetTask(ctx context.Context, principal application.Principal, projectID, taskID string) (application.Task, error)
	ListTasks(ctx context.Context, principal application.Principal, projectID string) ([]application.Task, error)
	UpdateTask(ctx context.Context, params application.UpdateTaskParams) (application.Task, error)
	RemoveTask(ctx context.Context, principal application.Principal, projectID, taskID string) error
	ReorderTask(ctx context.Context, params application.ReorderTaskParams) ([]application.Task, error)
	UpdateSchedule(ctx context.Context, params application.UpdateScheduleParams) (application.Task, error)
	ApplyDrag(ctx context.Context, params application.DragTaskParams) (application.DragTaskResult, error)
}

type TaskHandler struct {
	service   taskService
	responder responder
	logger    *slog.Logger
}

func NewTaskHandler(service taskService, logger *slog.Logger) *TaskHandler {
	base := defaultLogger(logger)
	return &TaskHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TaskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TaskHandler", operation, attrs...)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for task create")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "project_id", projectID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode task request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "project_id", projectID)

	task, err := h.service.AddTask(r.Context(), application.AddTaskParams{
		Principal: principal,
		ProjectID: projectID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "task creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("task_id", task.ID).InfoContext(r.Context(), "task created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, _ := ProjectIDFromContext(r.Context())
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing task id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "project_id", projectID, "task_id", taskID)

	task, err := h.service.GetTask(r.Context(), principal, projectID, taskID)
	if err != nil {
		logger.ErrorContext(r.Context(), "task fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "List", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for task list")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "project_id", projectID)

	tasks, err := h.service.ListTasks(r.Context(), principal, projectID)
	if err != nil {
		logger.ErrorContext(r.Context(), "task list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(tasks)).InfoContext(r.Context(), "tasks listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTasksResponse{Tasks: toTaskDTOs(tasks)})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, _ := ProjectIDFromContext(r.Context())
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing task id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "task_id", taskID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode task update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "project_id", projectID, "task_id", taskID)

	task, err := h.service.UpdateTask(r.Context(), application.UpdateTaskParams{
		Principal: principal,
		ProjectID: projectID,
		TaskID:    taskID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "task update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "task updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, _ := ProjectIDFromContext(r.Context())
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing task id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "project_id", projectID, "task_id", taskID)

	if err := h.service.RemoveTask(r.Context(), principal, projectID, taskID); err != nil {
		logger.ErrorContext(r.Context(), "task delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "task deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, _ := ProjectIDFromContext(r.Context())
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.log(r.Context(), "Reorder", "error_kind", "bad_request").ErrorContext(r.Context(), "missing task id for reorder")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Reorder", "principal_id", principal.UserID, "task_id", taskID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reorder request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Reorder", "principal_id", principal.UserID, "project_id", projectID, "task_id", taskID, "position", req.Position)

	tasks, err := h.service.ReorderTask(r.Context(), application.ReorderTaskParams{
		Principal: principal,
		ProjectID: projectID,
		TaskID:    taskID,
		Position:  req.Position,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "task reorder failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "task reordered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTasksResponse{Tasks: toTaskDTOs(tasks)})
}

func (h *TaskHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, _ := ProjectIDFromContext(r.Context())
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.log(r.Context(), "UpdateSchedule", "error_kind", "bad_request").ErrorContext(r.Context(), "missing task id for schedule edit")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scheduleEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateSchedule", "principal_id", principal.UserID, "task_id", taskID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule edit", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateSchedule", "principal_id", principal.UserID, "project_id", projectID, "task_id", taskID, "scale", req.Scale, "field", req.Field)

	task, err := h.service.UpdateSchedule(r.Context(), application.UpdateScheduleParams{
		Principal: principal,
		ProjectID: projectID,
		TaskID:    taskID,
		Scale:     strings.TrimSpace(req.Scale),
		Field:     strings.TrimSpace(req.Field),
		Value:     req.Value,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule edit failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "schedule updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Drag(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, _ := ProjectIDFromContext(r.Context())
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.log(r.Context(), "Drag", "error_kind", "bad_request").ErrorContext(r.Context(), "missing task id for drag")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Drag", "principal_id", principal.UserID, "task_id", taskID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode drag request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Drag", "principal_id", principal.UserID, "project_id", projectID, "task_id", taskID, "mode", req.Mode)

	result, err := h.service.ApplyDrag(r.Context(), application.DragTaskParams{
		Principal: principal,
		ProjectID: projectID,
		TaskID:    taskID,
		Scale:     strings.TrimSpace(req.Scale),
		Mode:      strings.TrimSpace(req.Mode),
		PixelX:    req.PixelX,
		CellWidth: req.CellWidth,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "drag failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("changed", result.Changed).InfoContext(r.Context(), "drag applied")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dragResponse{
		Task:     toTaskDTO(result.Task),
		Interval: intervalDTO{Start: result.Interval.Start, End: result.Interval.End},
		Changed:  result.Changed,
	})
}

type taskRequest struct {
	Name     string  `json:"name"`
	Assignee string  `json:"assignee"`
	TradeID  *string `json:"trade_id"`
	Color    *string `json:"color"`
}

func (r taskRequest) toInput() application.TaskInput {
	var tradeID *string
	if r.TradeID != nil {
		trimmed := strings.TrimSpace(*r.TradeID)
		tradeID = &trimmed
	}
	var color *string
	if r.Color != nil {
		trimmed := strings.TrimSpace(*r.Color)
		color = &trimmed
	}
	return application.TaskInput{
		Name:     strings.TrimSpace(r.Name),
		Assignee: strings.TrimSpace(r.Assignee),
		TradeID:  tradeID,
		Color:    color,
	}
}

type orderRequest struct {
	Position int `json:"position"`
}

type scheduleEditRequest struct {
	Scale string `json:"scale"`
	Field string `json:"field"`
	Value int    `json:"value"`
}

type dragRequest struct {
	Scale     string  `json:"scale"`
	Mode      string  `json:"mode"`
	PixelX    float64 `json:"pixel_x"`
	CellWidth float64 `json:"cell_width"`
}

type taskResponse struct {
	Task taskDTO `json:"task"`
}

type listTasksResponse struct {
	Tasks []taskDTO `json:"tasks"`
}

type dragResponse struct {
	Task     taskDTO     `json:"task"`
	Interval intervalDTO `json:"interval"`
	Changed  bool        `json:"changed"`
}

type intervalDTO struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// scheduleDTO carries one optional interval per scale. A missing key means
// the task has never been edited on that scale.
type scheduleDTO struct {
	Hour  *intervalDTO `json:"hour,omitempty"`
	Day   *intervalDTO `json:"day,omitempty"`
	Week  *intervalDTO `json:"week,omitempty"`
	Month *intervalDTO `json:"month,omitempty"`
}

type taskDTO struct {
	ID           string      `json:"id"`
	ProjectID    string      `json:"project_id"`
	Name         string      `json:"name"`
	Assignee     string      `json:"assignee,omitempty"`
	TradeID      *string     `json:"trade_id,omitempty"`
	Color        *string     `json:"color,omitempty"`
	DisplayOrder int         `json:"display_order"`
	Schedule     scheduleDTO `json:"schedule"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

func toTaskDTO(task application.Task) taskDTO {
	return taskDTO{
		ID:           task.ID,
		ProjectID:    task.ProjectID,
		Name:         task.Name,
		Assignee:     task.Assignee,
		TradeID:      task.TradeID,
		Color:        task.Color,
		DisplayOrder: task.DisplayOrder,
		Schedule:     toScheduleDTO(task.Schedule),
		CreatedAt:    task.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTaskDTOs(tasks []application.Task) []taskDTO {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskDTO(task))
	}
	return out
}

func toScheduleDTO(schedule timescale.Schedule) scheduleDTO {
	return scheduleDTO{
		Hour:  toIntervalDTO(schedule.Hour),
		Day:   toIntervalDTO(schedule.Day),
		Week:  toIntervalDTO(schedule.Week),
		Month: toIntervalDTO(schedule.Month),
	}
}

func toIntervalDTO(iv *timescale.Interval) *intervalDTO {
	if iv == nil {
		return nil
	}
	return &intervalDTO{Start: iv.Start, End: iv.End}
}
