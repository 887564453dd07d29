package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
)

type chartService interface {
	BuildChart(ctx context.Context, params application.BuildChartParams) (application.Chart, error)
	CountWorkingDays(ctx context.Context, params application.CountWorkingDaysParams) (int, error)
	WorkingDayTarget(ctx context.Context, params application.WorkingDayTargetParams) (time.Time, error)
	HolidaysBetween(ctx context.Context, params application.HolidaysBetweenParams) ([]application.Holiday, error)
}

type ChartHandler struct {
	service   chartService
	responder responder
	logger    *slog.Logger
}

func NewChartHandler(service chartService, logger *slog.Logger) *ChartHandler {
	base := defaultLogger(logger)
	return &ChartHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ChartHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ChartHandler", operation, attrs...)
}

func (h *ChartHandler) Render(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Render", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for chart")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	scale := strings.TrimSpace(query.Get("scale"))

	// An unparseable cell_width falls back to the default width rather
	// than failing the whole chart fetch.
	var cellWidth float64
	if raw := strings.TrimSpace(query.Get("cell_width")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			cellWidth = parsed
		}
	}

	logger := h.log(r.Context(), "Render", "principal_id", principal.UserID, "project_id", projectID, "scale", scale)

	chart, err := h.service.BuildChart(r.Context(), application.BuildChartParams{
		Principal: principal,
		ProjectID: projectID,
		Scale:     scale,
		CellWidth: cellWidth,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "chart assembly failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("row_count", len(chart.Rows)).InfoContext(r.Context(), "chart assembled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, chartResponse{Chart: toChartDTO(chart)})
}

func (h *ChartHandler) CountWorkdays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "CountWorkdays", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for workday count")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	start := strings.TrimSpace(query.Get("start"))
	end := strings.TrimSpace(query.Get("end"))

	logger := h.log(r.Context(), "CountWorkdays", "principal_id", principal.UserID, "project_id", projectID, "start", start, "end", end)

	count, err := h.service.CountWorkingDays(r.Context(), application.CountWorkingDaysParams{
		Principal: principal,
		ProjectID: projectID,
		Start:     start,
		End:       end,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "workday count failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workdaysResponse{
		Start:       start,
		End:         end,
		WorkingDays: count,
	})
}

func (h *ChartHandler) WorkdayTarget(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "WorkdayTarget", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for workday target")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	start := strings.TrimSpace(query.Get("start"))

	days, err := strconv.Atoi(strings.TrimSpace(query.Get("days")))
	if err != nil {
		h.log(r.Context(), "WorkdayTarget", "principal_id", principal.UserID, "project_id", projectID, "error_kind", "bad_request").ErrorContext(r.Context(), "unparseable days parameter", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadQueryParam)
		return
	}

	logger := h.log(r.Context(), "WorkdayTarget", "principal_id", principal.UserID, "project_id", projectID, "start", start, "days", days)

	target, err := h.service.WorkingDayTarget(r.Context(), application.WorkingDayTargetParams{
		Principal: principal,
		ProjectID: projectID,
		Start:     start,
		Days:      days,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "workday target failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workdayTargetResponse{
		Start: start,
		Days:  days,
		Date:  calendar.FormatDate(target),
	})
}

func (h *ChartHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "ListHolidays", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for holiday list")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	start := strings.TrimSpace(query.Get("start"))
	end := strings.TrimSpace(query.Get("end"))

	logger := h.log(r.Context(), "ListHolidays", "principal_id", principal.UserID, "project_id", projectID, "start", start, "end", end)

	holidays, err := h.service.HolidaysBetween(r.Context(), application.HolidaysBetweenParams{
		Principal: principal,
		ProjectID: projectID,
		Start:     start,
		End:       end,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "holiday list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(holidays)).InfoContext(r.Context(), "holidays listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listHolidaysResponse{Holidays: toHolidayDTOs(holidays)})
}

type chartResponse struct {
	Chart chartDTO `json:"chart"`
}

type chartDTO struct {
	ProjectID              string          `json:"project_id"`
	Scale                  string          `json:"scale"`
	CellWidth              float64         `json:"cell_width"`
	Slots                  []int           `json:"slots,omitempty"`
	Days                   []chartDayDTO   `json:"days,omitempty"`
	MonthGroups            []monthGroupDTO `json:"month_groups,omitempty"`
	Rows                   []chartRowDTO   `json:"rows"`
	DisplayOnlyWorkingDays bool            `json:"display_only_working_days"`
}

type chartDayDTO struct {
	Date        string `json:"date"`
	NonWorking  bool   `json:"non_working"`
	HolidayName string `json:"holiday_name,omitempty"`
}

type monthGroupDTO struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

type chartRowDTO struct {
	Task     taskDTO     `json:"task"`
	Interval intervalDTO `json:"interval"`
	Bar      barDTO      `json:"bar"`
}

type barDTO struct {
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

func toChartDTO(chart application.Chart) chartDTO {
	dto := chartDTO{
		ProjectID:              chart.ProjectID,
		Scale:                  chart.Scale.String(),
		CellWidth:              chart.CellWidth,
		Slots:                  append([]int(nil), chart.Slots...),
		DisplayOnlyWorkingDays: chart.DisplayOnlyWorkingDays,
	}

	for _, day := range chart.Days {
		dto.Days = append(dto.Days, chartDayDTO{
			Date:        calendar.FormatDate(day.Date),
			NonWorking:  day.NonWorking,
			HolidayName: day.HolidayName,
		})
	}

	for _, span := range chart.MonthGroups {
		dto.MonthGroups = append(dto.MonthGroups, monthGroupDTO{
			Year:  span.Year,
			Month: int(span.Month),
			Count: span.Count,
			Label: span.Label(),
		})
	}

	for _, row := range chart.Rows {
		dto.Rows = append(dto.Rows, chartRowDTO{
			Task:     toTaskDTO(row.Task),
			Interval: intervalDTO{Start: row.Interval.Start, End: row.Interval.End},
			Bar:      barDTO{Offset: row.Bar.Offset, Width: row.Bar.Width},
		})
	}

	return dto
}

type workdaysResponse struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	WorkingDays int    `json:"working_days"`
}

type workdayTargetResponse struct {
	Start string `json:"start"`
	Days  int    `json:"days"`
	Date  string `json:"date"`
}

type holidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type listHolidaysResponse struct {
	Holidays []holidayDTO `json:"holidays"`
}

func toHolidayDTOs(holidays []application.Holiday) []holidayDTO {
	if len(holidays) == 0 {
		return nil
	}
	out := make([]holidayDTO, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, holidayDTO{Date: calendar.FormatDate(h.Date), Name: h.Name})
	}
	return out
}
