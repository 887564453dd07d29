package application

import (
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar/holiday"
	"github.com/zegramtool/construction-gantt-chart/internal/geometry"
	"github.com/zegramtool/construction-gantt-chart/internal/timeline"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID    string
	SessionID string
}

// ProjectInput captures caller provided project fields. Dates and scale
// names arrive as wire strings and are parsed during validation.
type ProjectInput struct {
	Name                   string
	AnchorDate             string
	ActiveScale            string
	HourWindow             timescale.HourWindow
	DayWindow              timescale.DayWindow
	SkipSaturday           bool
	SkipSunday             bool
	SkipHoliday            bool
	WorkingDates           []string
	NonWorkingDates        []string
	DisplayOnlyWorkingDays bool
	Provisional            bool
}

// Project represents a persisted construction project.
type Project struct {
	ID          string
	OwnerID     string
	Name        string
	AnchorDate  time.Time
	ActiveScale timescale.Scale
	HourWindow  timescale.HourWindow
	DayWindow   timescale.DayWindow
	Workdays    calendar.WorkdayRules
	Provisional bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProjectParams wraps the data required to create a project.
type CreateProjectParams struct {
	Principal Principal
	Input     ProjectInput
}

// UpdateProjectParams wraps the data required to update an existing project.
type UpdateProjectParams struct {
	Principal Principal
	ProjectID string
	Input     ProjectInput
}

// TaskInput captures caller provided task fields.
type TaskInput struct {
	Name     string
	Assignee string
	TradeID  *string
	Color    *string
}

// Task represents a persisted task row on a project chart.
type Task struct {
	ID           string
	ProjectID    string
	Name         string
	Assignee     string
	TradeID      *string
	Color        *string
	DisplayOrder int
	Schedule     timescale.Schedule
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AddTaskParams wraps the data required to append a task to a project.
type AddTaskParams struct {
	Principal Principal
	ProjectID string
	Input     TaskInput
}

// UpdateTaskParams wraps the data required to update task attributes.
type UpdateTaskParams struct {
	Principal Principal
	ProjectID string
	TaskID    string
	Input     TaskInput
}

// ReorderTaskParams moves a task to a new position in the display order.
type ReorderTaskParams struct {
	Principal Principal
	ProjectID string
	TaskID    string
	Position  int
}

// UpdateScheduleParams applies a single-field schedule edit. Scale and
// field arrive as wire strings ("hour".."month", "start"/"end").
type UpdateScheduleParams struct {
	Principal Principal
	ProjectID string
	TaskID    string
	Scale     string
	Field     string
	Value     int
}

// DragTaskParams applies one pointer frame of a bar drag gesture.
type DragTaskParams struct {
	Principal Principal
	ProjectID string
	TaskID    string
	Scale     string
	Mode      string
	PixelX    float64
	CellWidth float64
}

// DragTaskResult reports the interval after the frame was applied.
type DragTaskResult struct {
	Task     Task
	Interval timescale.Interval
	Changed  bool
}

// TradeInput captures caller provided trade master fields.
type TradeInput struct {
	Name         string
	Color        string
	DisplayOrder int
}

// Trade represents an entry in the trade master list.
type Trade struct {
	ID           string
	Name         string
	Color        string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateTradeParams wraps the data required to create a trade.
type CreateTradeParams struct {
	Principal Principal
	Input     TradeInput
}

// UpdateTradeParams wraps the data required to update a trade.
type UpdateTradeParams struct {
	Principal Principal
	TradeID   string
	Input     TradeInput
}

// BuildChartParams identifies the project view to assemble.
type BuildChartParams struct {
	Principal Principal
	ProjectID string
	// Scale optionally overrides the project's active scale.
	Scale string
	// CellWidth is the rendered column width in pixels; zero or negative
	// selects the default.
	CellWidth float64
}

// ChartDay is one date column of a day-based chart grid.
type ChartDay struct {
	Date        time.Time
	NonWorking  bool
	HolidayName string
}

// ChartRow pairs a task with its resolved interval and bar geometry at
// the chart's scale.
type ChartRow struct {
	Task     Task
	Interval timescale.Interval
	Bar      geometry.Span
}

// Chart is the renderable description of one project at one scale.
type Chart struct {
	ProjectID   string
	Scale       timescale.Scale
	CellWidth   float64
	Slots       []int      // hour scale: minute-of-day slot values
	Days        []ChartDay // day, week, and month scales
	MonthGroups []timeline.MonthSpan
	Rows        []ChartRow
	// DisplayOnlyWorkingDays echoes the project setting; the grid itself
	// always covers the full sequence.
	DisplayOnlyWorkingDays bool
}

// CountWorkingDaysParams is an inclusive working-day count query.
type CountWorkingDaysParams struct {
	Principal Principal
	ProjectID string
	Start     string
	End       string
}

// WorkingDayTargetParams asks for the date on which the n-th working day
// falls, walking forward from start.
type WorkingDayTargetParams struct {
	Principal Principal
	ProjectID string
	Start     string
	Days      int
}

// HolidaysBetweenParams asks for the named national holidays inside an
// inclusive date range.
type HolidaysBetweenParams struct {
	Principal Principal
	ProjectID string
	Start     string
	End       string
}

// Holiday re-exports the gazette entry for chart annotations.
type Holiday = holiday.Holiday

// RegisterUserParams captures an account registration request.
type RegisterUserParams struct {
	Email       string
	DisplayName string
	Password    string
}

// UpdateProfileParams captures a profile update for the acting user.
type UpdateProfileParams struct {
	Principal   Principal
	Email       string
	DisplayName string
}

// ChangePasswordParams captures a password change for the acting user.
type ChangePasswordParams struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
}

// User represents an account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
