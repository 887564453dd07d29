package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

const (
	maxProjectNameRunes = 120
	maxWindowLengthDays = 93
)

// ProjectRepository captures the persistence interactions needed by the service.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	UpdateProject(ctx context.Context, project Project) (Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]Project, error)
}

// ProjectService orchestrates validation, authorization, and persistence
// for construction projects.
type ProjectService struct {
	projects    ProjectRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewProjectService constructs a project service with the provided dependencies.
func NewProjectService(projects ProjectRepository, idGenerator func() string, now func() time.Time) *ProjectService {
	return NewProjectServiceWithLogger(projects, idGenerator, now, nil)
}

// NewProjectServiceWithLogger constructs a project service with a specified logger.
func NewProjectServiceWithLogger(projects ProjectRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProjectService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProjectService{projects: projects, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ProjectService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProjectService", operation, attrs...)
}

// CreateProject validates input and persists a new project owned by the principal.
func (s *ProjectService) CreateProject(ctx context.Context, params CreateProjectParams) (project Project, err error) {
	if s == nil {
		err = fmt.Errorf("ProjectService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateProject",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create project", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("project_id", project.ID).InfoContext(ctx, "project created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	parsed, vErr := parseProjectInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	project = Project{
		ID:          s.idGenerator(),
		OwnerID:     params.Principal.UserID,
		Name:        parsed.name,
		AnchorDate:  parsed.anchor,
		ActiveScale: parsed.scale,
		HourWindow:  parsed.hours,
		DayWindow:   parsed.days,
		Workdays:    parsed.workdays,
		Provisional: params.Input.Provisional,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	if s.projects == nil {
		return
	}

	var persisted Project
	persisted, err = s.projects.CreateProject(ctx, project)
	if err != nil {
		err = mapProjectRepoError(err)
		return
	}

	project = persisted
	return
}

// GetProject returns a project visible to the principal.
func (s *ProjectService) GetProject(ctx context.Context, principal Principal, projectID string) (Project, error) {
	if s == nil {
		return Project{}, fmt.Errorf("ProjectService is nil")
	}
	if s.projects == nil {
		return Project{}, fmt.Errorf("project repository not configured")
	}
	return s.ownedProject(ctx, principal, projectID)
}

// ListProjects enumerates the projects owned by the principal, oldest first.
func (s *ProjectService) ListProjects(ctx context.Context, principal Principal) ([]Project, error) {
	if s == nil {
		return nil, fmt.Errorf("ProjectService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.projects == nil {
		return nil, nil
	}

	projects, err := s.projects.ListProjectsByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, mapProjectRepoError(err)
	}

	ordered := make([]Project, len(projects))
	copy(ordered, projects)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered, nil
}

// UpdateProject validates input and rewrites an existing project for its owner.
func (s *ProjectService) UpdateProject(ctx context.Context, params UpdateProjectParams) (project Project, err error) {
	if s == nil {
		err = fmt.Errorf("ProjectService is nil")
		return
	}
	if s.projects == nil {
		err = fmt.Errorf("project repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateProject",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update project", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "project updated")
	}()

	var existing Project
	existing, err = s.ownedProject(ctx, params.Principal, params.ProjectID)
	if err != nil {
		return
	}

	parsed, vErr := parseProjectInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = parsed.name
	updated.AnchorDate = parsed.anchor
	updated.ActiveScale = parsed.scale
	updated.HourWindow = parsed.hours
	updated.DayWindow = parsed.days
	updated.Workdays = parsed.workdays
	updated.Provisional = params.Input.Provisional
	updated.UpdatedAt = s.now()

	project, err = s.projects.UpdateProject(ctx, updated)
	if err != nil {
		err = mapProjectRepoError(err)
		return
	}
	return
}

// DeleteProject removes a project and everything under it for its owner.
func (s *ProjectService) DeleteProject(ctx context.Context, principal Principal, projectID string) error {
	if s == nil {
		return fmt.Errorf("ProjectService is nil")
	}
	if s.projects == nil {
		return fmt.Errorf("project repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteProject",
		"principal_id", principal.UserID,
		"project_id", projectID,
	)

	if _, err := s.ownedProject(ctx, principal, projectID); err != nil {
		logger.ErrorContext(ctx, "failed to delete project", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		err = mapProjectRepoError(err)
		logger.ErrorContext(ctx, "failed to delete project", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "project deleted")
	return nil
}

func (s *ProjectService) ownedProject(ctx context.Context, principal Principal, projectID string) (Project, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return Project{}, mapProjectRepoError(err)
	}
	if project.OwnerID != principal.UserID {
		return Project{}, ErrForbidden
	}
	return project, nil
}

type parsedProjectInput struct {
	name     string
	anchor   time.Time
	scale    timescale.Scale
	hours    timescale.HourWindow
	days     timescale.DayWindow
	workdays calendar.WorkdayRules
}

func parseProjectInput(input ProjectInput) (parsedProjectInput, *ValidationError) {
	vErr := &ValidationError{}
	parsed := parsedProjectInput{}

	parsed.name = strings.TrimSpace(input.Name)
	if parsed.name == "" {
		vErr.add("name", "name is required")
	} else if utf8.RuneCountInString(parsed.name) > maxProjectNameRunes {
		vErr.add("name", fmt.Sprintf("name must be at most %d characters", maxProjectNameRunes))
	}

	if strings.TrimSpace(input.AnchorDate) == "" {
		vErr.add("anchor_date", "anchor date is required")
	} else if anchor, err := calendar.ParseDate(input.AnchorDate); err != nil {
		vErr.add("anchor_date", "anchor date must be formatted as YYYY-MM-DD")
	} else {
		parsed.anchor = anchor
	}

	parsed.scale = timescale.ScaleDay
	if input.ActiveScale != "" {
		scale, err := timescale.ParseScale(input.ActiveScale)
		if err != nil {
			vErr.add("active_scale", "scale must be one of hour, day, week, month")
		} else {
			parsed.scale = scale
		}
	}

	parsed.hours = input.HourWindow
	if parsed.hours == (timescale.HourWindow{}) {
		parsed.hours = timescale.DefaultHourWindow
	} else if err := parsed.hours.Validate(); err != nil {
		vErr.add("hour_window", "hour window must satisfy 0 <= start < end <= 24")
	}

	parsed.days = input.DayWindow
	if parsed.days == (timescale.DayWindow{}) {
		parsed.days = timescale.DefaultDayWindow
	} else if err := parsed.days.Validate(); err != nil {
		vErr.add("day_window", fmt.Sprintf("window lengths must be between 1 and %d days", maxWindowLengthDays))
	} else if parsed.days.Day > maxWindowLengthDays || parsed.days.Week > maxWindowLengthDays || parsed.days.Month > maxWindowLengthDays {
		vErr.add("day_window", fmt.Sprintf("window lengths must be between 1 and %d days", maxWindowLengthDays))
	}

	working, err := calendar.ParseDateSet(input.WorkingDates)
	if err != nil {
		vErr.add("working_dates", "dates must be formatted as YYYY-MM-DD")
	}
	nonWorking, err := calendar.ParseDateSet(input.NonWorkingDates)
	if err != nil {
		vErr.add("non_working_dates", "dates must be formatted as YYYY-MM-DD")
	}
	if both := working.Intersect(nonWorking); len(both) > 0 {
		vErr.add("override_dates", fmt.Sprintf("dates marked both working and non-working: %s", strings.Join(both, ", ")))
	}

	parsed.workdays = calendar.WorkdayRules{
		SkipSaturday:           input.SkipSaturday,
		SkipSunday:             input.SkipSunday,
		SkipHoliday:            input.SkipHoliday,
		WorkingOverrides:       working,
		NonWorkingOverrides:    nonWorking,
		DisplayOnlyWorkingDays: input.DisplayOnlyWorkingDays,
	}

	return parsed, vErr
}

func mapProjectRepoError(err error) error {
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
		vErr.add("project", "related records are missing")
		return vErr
	}
	return err
}
