package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar/holiday"
	"github.com/zegramtool/construction-gantt-chart/internal/geometry"
	"github.com/zegramtool/construction-gantt-chart/internal/timeline"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// defaultCellWidth is used when the caller does not supply a column width.
const defaultCellWidth = 24.0

// TaskDirectory exposes the task listing the chart assembly needs.
type TaskDirectory interface {
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
}

// ChartService assembles renderable chart views and answers working-day
// queries against a project's calendar rules.
type ChartService struct {
	projects ProjectDirectory
	tasks    TaskDirectory
	holidays *holiday.Table
	grids    *dayGridCache
	logger   *slog.Logger
}

// NewChartService wires dependencies for chart assembly.
func NewChartService(projects ProjectDirectory, tasks TaskDirectory, holidays *holiday.Table) *ChartService {
	return NewChartServiceWithLogger(projects, tasks, holidays, nil)
}

// NewChartServiceWithLogger wires dependencies for chart assembly with a specified logger.
func NewChartServiceWithLogger(projects ProjectDirectory, tasks TaskDirectory, holidays *holiday.Table, logger *slog.Logger) *ChartService {
	return &ChartService{
		projects: projects,
		tasks:    tasks,
		holidays: holidays,
		grids:    newDayGridCache(0, 0, nil),
		logger:   defaultLogger(logger),
	}
}

func (s *ChartService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ChartService", operation, attrs...)
}

// BuildChart assembles the grid, header groups, and bar geometry for one
// project at one scale.
func (s *ChartService) BuildChart(ctx context.Context, params BuildChartParams) (chart Chart, err error) {
	if s == nil {
		err = fmt.Errorf("ChartService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task directory not configured")
		return
	}

	logger := s.loggerWith(ctx, "BuildChart",
		"principal_id", params.Principal.UserID,
		"project_id", params.ProjectID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build chart", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("scale", chart.Scale.String(), "rows", len(chart.Rows)).InfoContext(ctx, "chart built")
	}()

	var project Project
	project, err = s.ownerProject(ctx, params.Principal, params.ProjectID)
	if err != nil {
		return
	}

	scale := project.ActiveScale
	if params.Scale != "" {
		parsed, parseErr := timescale.ParseScale(params.Scale)
		if parseErr != nil {
			vErr := &ValidationError{}
			vErr.add("scale", "scale must be one of hour, day, week, month")
			err = vErr
			return
		}
		scale = parsed
	}

	cellWidth := params.CellWidth
	if cellWidth <= 0 {
		cellWidth = defaultCellWidth
	}

	bounds := timescale.BoundsFor(scale, project.HourWindow, project.DayWindow)
	grid := timeline.Generate(scale, project.AnchorDate, project.HourWindow, project.DayWindow)

	chart = Chart{
		ProjectID:              project.ID,
		Scale:                  scale,
		CellWidth:              cellWidth,
		DisplayOnlyWorkingDays: project.Workdays.DisplayOnlyWorkingDays,
	}

	if scale == timescale.ScaleHour {
		chart.Slots = grid.Minutes
	} else {
		key := buildDayGridKey(project, scale)
		days, hit := s.grids.Get(key)
		if !hit {
			cal := s.calendarFor(project)
			days = make([]ChartDay, len(grid.Dates))
			for i, date := range grid.Dates {
				day := ChartDay{Date: date, NonWorking: cal.IsNonWorking(date)}
				if s.holidays != nil {
					if name, ok := s.holidays.Lookup(date); ok {
						day.HolidayName = name
					}
				}
				days[i] = day
			}
			s.grids.Store(key, days)
		}
		chart.Days = days

		// Provisional plans show bare column numbers, so no month header.
		if !project.Provisional {
			chart.MonthGroups = timeline.GroupByMonth(grid.Dates)
		}
	}

	var tasks []Task
	tasks, err = s.tasks.ListTasks(ctx, project.ID)
	if err != nil {
		err = mapTaskRepoError(err)
		return
	}

	rows := make([]ChartRow, 0, len(tasks))
	for _, task := range tasks {
		iv := task.Schedule.Resolve(scale)
		rows = append(rows, ChartRow{
			Task:     task,
			Interval: iv,
			Bar:      geometry.BarSpan(iv, bounds, cellWidth),
		})
	}
	chart.Rows = rows
	return
}

// CountWorkingDays answers the inclusive working-day count between two
// dates under the project's rules.
func (s *ChartService) CountWorkingDays(ctx context.Context, params CountWorkingDaysParams) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("ChartService is nil")
	}

	project, err := s.ownerProject(ctx, params.Principal, params.ProjectID)
	if err != nil {
		return 0, err
	}

	vErr := &ValidationError{}
	start, startErr := calendar.ParseDate(params.Start)
	if startErr != nil {
		vErr.add("start", "start must be formatted as YYYY-MM-DD")
	}
	end, endErr := calendar.ParseDate(params.End)
	if endErr != nil {
		vErr.add("end", "end must be formatted as YYYY-MM-DD")
	}
	if vErr.HasErrors() {
		return 0, vErr
	}

	return s.calendarFor(project).CountWorkingDays(start, end), nil
}

// WorkingDayTarget answers the date on which the n-th working day falls,
// walking forward from start under the project's rules.
func (s *ChartService) WorkingDayTarget(ctx context.Context, params WorkingDayTargetParams) (time.Time, error) {
	if s == nil {
		return time.Time{}, fmt.Errorf("ChartService is nil")
	}

	project, err := s.ownerProject(ctx, params.Principal, params.ProjectID)
	if err != nil {
		return time.Time{}, err
	}

	vErr := &ValidationError{}
	start, startErr := calendar.ParseDate(params.Start)
	if startErr != nil {
		vErr.add("start", "start must be formatted as YYYY-MM-DD")
	}
	if params.Days < 0 {
		vErr.add("days", "days must not be negative")
	}
	if vErr.HasErrors() {
		return time.Time{}, vErr
	}

	return s.calendarFor(project).AddWorkingDays(start, params.Days), nil
}

// HolidaysBetween returns the named national holidays inside an inclusive
// date range, for chart annotations.
func (s *ChartService) HolidaysBetween(ctx context.Context, params HolidaysBetweenParams) ([]Holiday, error) {
	if s == nil {
		return nil, fmt.Errorf("ChartService is nil")
	}

	if _, err := s.ownerProject(ctx, params.Principal, params.ProjectID); err != nil {
		return nil, err
	}

	vErr := &ValidationError{}
	start, startErr := calendar.ParseDate(params.Start)
	if startErr != nil {
		vErr.add("start", "start must be formatted as YYYY-MM-DD")
	}
	end, endErr := calendar.ParseDate(params.End)
	if endErr != nil {
		vErr.add("end", "end must be formatted as YYYY-MM-DD")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	if s.holidays == nil {
		return nil, nil
	}
	return s.holidays.Between(start, end), nil
}

func (s *ChartService) ownerProject(ctx context.Context, principal Principal, projectID string) (Project, error) {
	if s.projects == nil {
		return Project{}, fmt.Errorf("project directory not configured")
	}
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return Project{}, mapProjectRepoError(err)
	}
	if project.OwnerID != principal.UserID {
		return Project{}, ErrForbidden
	}
	return project, nil
}

func (s *ChartService) calendarFor(project Project) calendar.Calendar {
	var holidays calendar.HolidayCalendar
	if s.holidays != nil {
		holidays = s.holidays
	}
	return calendar.New(project.Workdays, holidays)
}
