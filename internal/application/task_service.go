package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zegramtool/construction-gantt-chart/internal/gesture"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TaskRepository captures the persistence interactions needed by the service.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, task Task) (Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	MoveTask(ctx context.Context, projectID, taskID string, position int) error
}

// ProjectDirectory exposes the project lookup used for ownership checks
// and window bounds.
type ProjectDirectory interface {
	GetProject(ctx context.Context, id string) (Project, error)
}

// TradeCatalog exposes trade existence checks.
type TradeCatalog interface {
	TradeExists(ctx context.Context, id string) (bool, error)
}

// TaskService orchestrates validation, authorization, and persistence for
// the task rows of a project chart, including schedule edits and drags.
type TaskService struct {
	tasks       TaskRepository
	projects    ProjectDirectory
	trades      TradeCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTaskService wires dependencies for task operations.
func NewTaskService(tasks TaskRepository, projects ProjectDirectory, trades TradeCatalog, idGenerator func() string, now func() time.Time) *TaskService {
	return NewTaskServiceWithLogger(tasks, projects, trades, idGenerator, now, nil)
}

// NewTaskServiceWithLogger wires dependencies for task operations with a specified logger.
func NewTaskServiceWithLogger(tasks TaskRepository, projects ProjectDirectory, trades TradeCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks:       tasks,
		projects:    projects,
		trades:      trades,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TaskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TaskService", operation, attrs...)
}

// AddTask validates input and appends a task to the end of the project's
// display order.
func (s *TaskService) AddTask(ctx context.Context, params AddTaskParams) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddTask",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("task_id", task.ID).InfoContext(ctx, "task added")
	}()

	if _, err = s.ownerProject(ctx, params.Principal, params.ProjectID); err != nil {
		return
	}

	input := normalizeTaskInput(params.Input)
	vErr := validateTaskInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureTradeExists(ctx, input.TradeID); err != nil {
		return
	}

	createdAt := s.now()
	task = Task{
		ID:        s.idGenerator(),
		ProjectID: params.ProjectID,
		Name:      input.Name,
		Assignee:  input.Assignee,
		TradeID:   input.TradeID,
		Color:     input.Color,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	var persisted Task
	persisted, err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		err = mapTaskRepoError(err)
		return
	}
	task = persisted
	return
}

// GetTask returns one task of a project visible to the principal.
func (s *TaskService) GetTask(ctx context.Context, principal Principal, projectID, taskID string) (Task, error) {
	if s == nil {
		return Task{}, fmt.Errorf("TaskService is nil")
	}
	if s.tasks == nil {
		return Task{}, fmt.Errorf("task repository not configured")
	}
	if _, err := s.ownerProject(ctx, principal, projectID); err != nil {
		return Task{}, err
	}
	return s.taskInProject(ctx, projectID, taskID)
}

// ListTasks returns the project's tasks in display order.
func (s *TaskService) ListTasks(ctx context.Context, principal Principal, projectID string) ([]Task, error) {
	if s == nil {
		return nil, fmt.Errorf("TaskService is nil")
	}
	if s.tasks == nil {
		return nil, fmt.Errorf("task repository not configured")
	}
	if _, err := s.ownerProject(ctx, principal, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListTasks(ctx, projectID)
	if err != nil {
		return nil, mapTaskRepoError(err)
	}

	ordered := make([]Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DisplayOrder == ordered[j].DisplayOrder {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})
	return ordered, nil
}

// UpdateTask validates input and rewrites a task's descriptive attributes.
// Schedules move through UpdateSchedule and ApplyDrag instead.
func (s *TaskService) UpdateTask(ctx context.Context, params UpdateTaskParams) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTask",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
		"task_id", params.TaskID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task updated")
	}()

	if _, err = s.ownerProject(ctx, params.Principal, params.ProjectID); err != nil {
		return
	}

	var existing Task
	existing, err = s.taskInProject(ctx, params.ProjectID, params.TaskID)
	if err != nil {
		return
	}

	input := normalizeTaskInput(params.Input)
	vErr := validateTaskInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureTradeExists(ctx, input.TradeID); err != nil {
		return
	}

	updated := existing
	updated.Name = input.Name
	updated.Assignee = input.Assignee
	updated.TradeID = input.TradeID
	updated.Color = input.Color
	updated.UpdatedAt = s.now()

	task, err = s.tasks.UpdateTask(ctx, updated)
	if err != nil {
		err = mapTaskRepoError(err)
		return
	}
	return
}

// RemoveTask deletes a task; tasks below it close the display-order gap.
func (s *TaskService) RemoveTask(ctx context.Context, principal Principal, projectID, taskID string) error {
	if s == nil {
		return fmt.Errorf("TaskService is nil")
	}
	if s.tasks == nil {
		return fmt.Errorf("task repository not configured")
	}

	logger := s.loggerWith(ctx, "RemoveTask",
		"principal_id", principal.UserID,
		"project_id", projectID,
		"task_id", taskID,
	)

	if _, err := s.ownerProject(ctx, principal, projectID); err != nil {
		logger.ErrorContext(ctx, "failed to remove task", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if _, err := s.taskInProject(ctx, projectID, taskID); err != nil {
		logger.ErrorContext(ctx, "failed to remove task", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		err = mapTaskRepoError(err)
		logger.ErrorContext(ctx, "failed to remove task", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "task removed")
	return nil
}

// ReorderTask moves a task to the given zero-based position and returns
// the project's tasks in the resulting order. Positions past the end
// clamp to the last slot.
func (s *TaskService) ReorderTask(ctx context.Context, params ReorderTaskParams) (tasks []Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ReorderTask",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
		"task_id", params.TaskID,
		"position", params.Position,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reorder task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task reordered")
	}()

	if _, err = s.ownerProject(ctx, params.Principal, params.ProjectID); err != nil {
		return
	}
	if _, err = s.taskInProject(ctx, params.ProjectID, params.TaskID); err != nil {
		return
	}

	if params.Position < 0 {
		vErr := &ValidationError{}
		vErr.add("position", "position must not be negative")
		err = vErr
		return
	}

	if err = s.tasks.MoveTask(ctx, params.ProjectID, params.TaskID, params.Position); err != nil {
		err = mapTaskRepoError(err)
		return
	}

	tasks, err = s.tasks.ListTasks(ctx, params.ProjectID)
	if err != nil {
		err = mapTaskRepoError(err)
		return
	}
	return
}

// UpdateSchedule applies a single-field schedule edit: the raw value is
// rounded to the scale's step, clamped to the window bounds, and written
// to the addressed endpoint. An edit that would invert the interval is
// rejected.
func (s *TaskService) UpdateSchedule(ctx context.Context, params UpdateScheduleParams) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSchedule",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
		"task_id", params.TaskID,
		"scale", params.Scale,
		"field", params.Field,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule updated")
	}()

	var project Project
	project, err = s.ownerProject(ctx, params.Principal, params.ProjectID)
	if err != nil {
		return
	}

	var existing Task
	existing, err = s.taskInProject(ctx, params.ProjectID, params.TaskID)
	if err != nil {
		return
	}

	vErr := &ValidationError{}
	scale, scaleErr := timescale.ParseScale(params.Scale)
	if scaleErr != nil {
		vErr.add("scale", "scale must be one of hour, day, week, month")
	}
	field, fieldErr := timescale.ParseField(params.Field)
	if fieldErr != nil {
		vErr.add("field", "field must be start or end")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	bounds := timescale.BoundsFor(scale, project.HourWindow, project.DayWindow)
	next := timescale.Update(existing.Schedule, scale, field, params.Value, bounds)
	if iv := next.Resolve(scale); iv.Start > iv.End {
		vErr.add("value", "start must not be after end")
		err = vErr
		return
	}

	existing.Schedule = next
	existing.UpdatedAt = s.now()

	task, err = s.tasks.UpdateTask(ctx, existing)
	if err != nil {
		err = mapTaskRepoError(err)
		return
	}
	return
}

// ApplyDrag applies one pointer frame of a bar gesture against the
// task's interval at the given scale. A frame the gesture rules reject
// leaves the schedule untouched and reports Changed=false.
func (s *TaskService) ApplyDrag(ctx context.Context, params DragTaskParams) (result DragTaskResult, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ApplyDrag",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
		"task_id", params.TaskID,
		"scale", params.Scale,
		"mode", params.Mode,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to apply drag", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("changed", result.Changed).InfoContext(ctx, "drag applied")
	}()

	var project Project
	project, err = s.ownerProject(ctx, params.Principal, params.ProjectID)
	if err != nil {
		return
	}

	var existing Task
	existing, err = s.taskInProject(ctx, params.ProjectID, params.TaskID)
	if err != nil {
		return
	}

	vErr := &ValidationError{}
	scale, scaleErr := timescale.ParseScale(params.Scale)
	if scaleErr != nil {
		vErr.add("scale", "scale must be one of hour, day, week, month")
	}
	mode, modeErr := gesture.ParseMode(params.Mode)
	if modeErr != nil {
		vErr.add("mode", "mode must be one of move, resize-start, resize-end")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	bounds := timescale.BoundsFor(scale, project.HourWindow, project.DayWindow)
	origin := existing.Schedule.Resolve(scale)

	drag, dragErr := gesture.Begin(mode, origin, bounds, params.CellWidth)
	if dragErr != nil {
		if errors.Is(dragErr, gesture.ErrBadCellWidth) {
			vErr.add("cell_width", "cell width must be positive")
			err = vErr
			return
		}
		err = dragErr
		return
	}

	_, changed := drag.Track(params.PixelX)
	final := drag.End()

	if !changed {
		result = DragTaskResult{Task: existing, Interval: final, Changed: false}
		return
	}

	existing.Schedule = existing.Schedule.WithInterval(scale, final)
	existing.UpdatedAt = s.now()

	var persisted Task
	persisted, err = s.tasks.UpdateTask(ctx, existing)
	if err != nil {
		err = mapTaskRepoError(err)
		return
	}

	result = DragTaskResult{Task: persisted, Interval: final, Changed: true}
	return
}

func (s *TaskService) ownerProject(ctx context.Context, principal Principal, projectID string) (Project, error) {
	if s.projects == nil {
		return Project{}, fmt.Errorf("project directory not configured")
	}
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return Project{}, mapTaskRepoError(err)
	}
	if project.OwnerID != principal.UserID {
		return Project{}, ErrForbidden
	}
	return project, nil
}

func (s *TaskService) taskInProject(ctx context.Context, projectID, taskID string) (Task, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, mapTaskRepoError(err)
	}
	if task.ProjectID != projectID {
		return Task{}, ErrNotFound
	}
	return task, nil
}

func (s *TaskService) ensureTradeExists(ctx context.Context, tradeID *string) error {
	if tradeID == nil || s.trades == nil {
		return nil
	}
	exists, err := s.trades.TradeExists(ctx, *tradeID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("trade_id", "trade does not exist")
	return vErr
}

func normalizeTaskInput(input TaskInput) TaskInput {
	return TaskInput{
		Name:     strings.TrimSpace(input.Name),
		Assignee: strings.TrimSpace(input.Assignee),
		TradeID:  normalizeOptionalString(input.TradeID),
		Color:    normalizeOptionalString(input.Color),
	}
}

func validateTaskInput(input TaskInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	} else if utf8.RuneCountInString(input.Name) > maxProjectNameRunes {
		vErr.add("name", fmt.Sprintf("name must be at most %d characters", maxProjectNameRunes))
	}

	if input.Color != nil && !colorPattern.MatchString(*input.Color) {
		vErr.add("color", "color must be formatted as #RRGGBB")
	}

	return vErr
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapTaskRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("task", "related records are missing")
		return vErr
	}
	return err
}
