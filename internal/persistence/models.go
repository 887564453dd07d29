package persistence

import (
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// Project represents one construction chart stored in persistence.
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

// Task represents one bar row of a chart. DisplayOrder is dense and
// zero-based within the project.
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

// Trade represents a master-list entry of site trades that tasks can
// reference for grouping and default colors.
type Trade struct {
	ID           string
	Name         string
	Color        string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User represents an account stored in persistence, including its
// password hash.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
