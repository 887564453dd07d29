package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

type projectService interface {
	CreateProject(ctx context.Context, params application.CreateProjectParams) (application.Project, error)
	GetProject(ctx context.Context, principal application.Principal, projectID string) (application.Project, error)
	ListProjects(ctx context.Context, principal application.Principal) ([]application.Project, error)
	UpdateProject(ctx context.Context, params application.UpdateProjectParams) (application.Project, error)
	DeleteProject(ctx context.Context, principal application.Principal, projectID string) error
}

type ProjectHandler struct {
	service   projectService
	responder responder
	logger    *slog.Logger
}

func NewProjectHandler(service projectService, logger *slog.Logger) *ProjectHandler {
	base := defaultLogger(logger)
	return &ProjectHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProjectHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProjectHandler", operation, attrs...)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode project request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	project, err := h.service.CreateProject(r.Context(), application.CreateProjectParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "project creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("project_id", project.ID).InfoContext(r.Context(), "project created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "project_id", projectID)

	project, err := h.service.GetProject(r.Context(), principal, projectID)
	if err != nil {
		logger.ErrorContext(r.Context(), "project fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	projects, err := h.service.ListProjects(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "project list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(projects)).InfoContext(r.Context(), "projects listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listProjectsResponse{Projects: toProjectDTOs(projects)})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "project_id", projectID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode project update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "project_id", projectID)

	project, err := h.service.UpdateProject(r.Context(), application.UpdateProjectParams{
		Principal: principal,
		ProjectID: projectID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "project update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "project updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "project_id", projectID)

	if err := h.service.DeleteProject(r.Context(), principal, projectID); err != nil {
		logger.ErrorContext(r.Context(), "project delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "project deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type projectRequest struct {
	Name                   string         `json:"name"`
	AnchorDate             string         `json:"anchor_date"`
	ActiveScale            string         `json:"active_scale"`
	HourWindow             *hourWindowDTO `json:"hour_window"`
	DayWindow              *dayWindowDTO  `json:"day_window"`
	SkipSaturday           bool           `json:"skip_saturday"`
	SkipSunday             bool           `json:"skip_sunday"`
	SkipHoliday            bool           `json:"skip_holiday"`
	WorkingDates           []string       `json:"working_dates"`
	NonWorkingDates        []string       `json:"non_working_dates"`
	DisplayOnlyWorkingDays bool           `json:"display_only_working_days"`
	Provisional            bool           `json:"provisional"`
}

func (r projectRequest) toInput() application.ProjectInput {
	input := application.ProjectInput{
		Name:                   strings.TrimSpace(r.Name),
		AnchorDate:             strings.TrimSpace(r.AnchorDate),
		ActiveScale:            strings.TrimSpace(r.ActiveScale),
		SkipSaturday:           r.SkipSaturday,
		SkipSunday:             r.SkipSunday,
		SkipHoliday:            r.SkipHoliday,
		WorkingDates:           append([]string(nil), r.WorkingDates...),
		NonWorkingDates:        append([]string(nil), r.NonWorkingDates...),
		DisplayOnlyWorkingDays: r.DisplayOnlyWorkingDays,
		Provisional:            r.Provisional,
	}
	if r.HourWindow != nil {
		input.HourWindow = timescale.HourWindow{StartHour: r.HourWindow.StartHour, EndHour: r.HourWindow.EndHour}
	}
	if r.DayWindow != nil {
		input.DayWindow = timescale.DayWindow{Day: r.DayWindow.Day, Week: r.DayWindow.Week, Month: r.DayWindow.Month}
	}
	return input
}

type projectResponse struct {
	Project projectDTO `json:"project"`
}

type listProjectsResponse struct {
	Projects []projectDTO `json:"projects"`
}

type hourWindowDTO struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

type dayWindowDTO struct {
	Day   int `json:"day"`
	Week  int `json:"week"`
	Month int `json:"month"`
}

type projectDTO struct {
	ID                     string        `json:"id"`
	OwnerID                string        `json:"owner_id"`
	Name                   string        `json:"name"`
	AnchorDate             string        `json:"anchor_date"`
	ActiveScale            string        `json:"active_scale"`
	HourWindow             hourWindowDTO `json:"hour_window"`
	DayWindow              dayWindowDTO  `json:"day_window"`
	SkipSaturday           bool          `json:"skip_saturday"`
	SkipSunday             bool          `json:"skip_sunday"`
	SkipHoliday            bool          `json:"skip_holiday"`
	WorkingDates           []string      `json:"working_dates,omitempty"`
	NonWorkingDates        []string      `json:"non_working_dates,omitempty"`
	DisplayOnlyWorkingDays bool          `json:"display_only_working_days"`
	Provisional            bool          `json:"provisional"`
	CreatedAt              string        `json:"created_at"`
	UpdatedAt              string        `json:"updated_at"`
}

func toProjectDTO(project application.Project) projectDTO {
	return projectDTO{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        project.Name,
		AnchorDate:  calendar.FormatDate(project.AnchorDate),
		ActiveScale: project.ActiveScale.String(),
		HourWindow: hourWindowDTO{
			StartHour: project.HourWindow.StartHour,
			EndHour:   project.HourWindow.EndHour,
		},
		DayWindow: dayWindowDTO{
			Day:   project.DayWindow.Day,
			Week:  project.DayWindow.Week,
			Month: project.DayWindow.Month,
		},
		SkipSaturday:           project.Workdays.SkipSaturday,
		SkipSunday:             project.Workdays.SkipSunday,
		SkipHoliday:            project.Workdays.SkipHoliday,
		WorkingDates:           project.Workdays.WorkingOverrides.Values(),
		NonWorkingDates:        project.Workdays.NonWorkingOverrides.Values(),
		DisplayOnlyWorkingDays: project.Workdays.DisplayOnlyWorkingDays,
		Provisional:            project.Provisional,
		CreatedAt:              project.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:              project.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toProjectDTOs(projects []application.Project) []projectDTO {
	if len(projects) == 0 {
		return nil
	}
	out := make([]projectDTO, 0, len(projects))
	for _, project := range projects {
		out = append(out, toProjectDTO(project))
	}
	return out
}
