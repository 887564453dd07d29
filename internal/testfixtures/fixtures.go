package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

var (
	projectCounter uint64
	taskCounter    uint64
	tradeCounter   uint64
	userCounter    uint64
	sessionCounter uint64
)

var jst = time.FixedZone("JST", 9*60*60)

var referenceTime = time.Date(2024, time.April, 1, 9, 0, 0, 0, jst)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday morning so day arithmetic in tests stays readable.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Project fixtures ---------------------------

// ProjectFixture represents a deterministic project record that can be
// materialised for application or persistence tests.
type ProjectFixture struct {
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

// ProjectOption configures the generated project fixture.
type ProjectOption func(*ProjectFixture)

// NewProjectFixture returns a deterministic project fixture with optional overrides.
func NewProjectFixture(opts ...ProjectOption) ProjectFixture {
	idx := atomic.AddUint64(&projectCounter, 1)
	fixture := ProjectFixture{
		ID:          fmt.Sprintf("project-%03d", idx),
		OwnerID:     fmt.Sprintf("user-%03d", idx),
		Name:        fmt.Sprintf("工事 %03d", idx),
		AnchorDate:  calendar.Normalize(referenceTime),
		ActiveScale: timescale.ScaleDay,
		HourWindow:  timescale.DefaultHourWindow,
		DayWindow:   timescale.DefaultDayWindow,
		Workdays:    calendar.DefaultWorkdayRules(),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithProjectID overrides the generated project ID.
func WithProjectID(id string) ProjectOption {
	return func(f *ProjectFixture) {
		f.ID = id
	}
}

// WithProjectOwner sets the owning user ID.
func WithProjectOwner(ownerID string) ProjectOption {
	return func(f *ProjectFixture) {
		f.OwnerID = ownerID
	}
}

// WithProjectName overrides the generated project name.
func WithProjectName(name string) ProjectOption {
	return func(f *ProjectFixture) {
		f.Name = name
	}
}

// WithProjectAnchor sets the anchor date. The value is normalised to
// midnight JST.
func WithProjectAnchor(t time.Time) ProjectOption {
	return func(f *ProjectFixture) {
		f.AnchorDate = calendar.Normalize(t)
	}
}

// WithProjectScale sets the active display scale.
func WithProjectScale(scale timescale.Scale) ProjectOption {
	return func(f *ProjectFixture) {
		f.ActiveScale = scale
	}
}

// WithProjectHourWindow sets the hour-scale display window.
func WithProjectHourWindow(window timescale.HourWindow) ProjectOption {
	return func(f *ProjectFixture) {
		f.HourWindow = window
	}
}

// WithProjectDayWindow sets the date-scale display windows.
func WithProjectDayWindow(window timescale.DayWindow) ProjectOption {
	return func(f *ProjectFixture) {
		f.DayWindow = window
	}
}

// WithProjectWorkdays sets the workday rules on the fixture.
func WithProjectWorkdays(rules calendar.WorkdayRules) ProjectOption {
	return func(f *ProjectFixture) {
		f.Workdays = rules.Clone()
	}
}

// WithProjectProvisional sets the provisional flag.
func WithProjectProvisional(provisional bool) ProjectOption {
	return func(f *ProjectFixture) {
		f.Provisional = provisional
	}
}

// WithProjectCreatedAt sets the created timestamp on the fixture.
func WithProjectCreatedAt(t time.Time) ProjectOption {
	return func(f *ProjectFixture) {
		f.CreatedAt = t
	}
}

// WithProjectUpdatedAt sets the updated timestamp on the fixture.
func WithProjectUpdatedAt(t time.Time) ProjectOption {
	return func(f *ProjectFixture) {
		f.UpdatedAt = t
	}
}

// WithProjectTimestamps sets both created and updated timestamps.
func WithProjectTimestamps(created, updated time.Time) ProjectOption {
	return func(f *ProjectFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Project value.
func (f ProjectFixture) Application() application.Project {
	return application.Project{
		ID:          f.ID,
		OwnerID:     f.OwnerID,
		Name:        f.Name,
		AnchorDate:  f.AnchorDate,
		ActiveScale: f.ActiveScale,
		HourWindow:  f.HourWindow,
		DayWindow:   f.DayWindow,
		Workdays:    f.Workdays.Clone(),
		Provisional: f.Provisional,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Project value.
func (f ProjectFixture) Persistence() persistence.Project {
	return persistence.Project{
		ID:          f.ID,
		OwnerID:     f.OwnerID,
		Name:        f.Name,
		AnchorDate:  f.AnchorDate,
		ActiveScale: f.ActiveScale,
		HourWindow:  f.HourWindow,
		DayWindow:   f.DayWindow,
		Workdays:    f.Workdays.Clone(),
		Provisional: f.Provisional,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ProjectInput in wire form.
func (f ProjectFixture) Input() application.ProjectInput {
	return application.ProjectInput{
		Name:                   f.Name,
		AnchorDate:             calendar.FormatDate(f.AnchorDate),
		ActiveScale:            f.ActiveScale.String(),
		HourWindow:             f.HourWindow,
		DayWindow:              f.DayWindow,
		SkipSaturday:           f.Workdays.SkipSaturday,
		SkipSunday:             f.Workdays.SkipSunday,
		SkipHoliday:            f.Workdays.SkipHoliday,
		WorkingDates:           f.Workdays.WorkingOverrides.Values(),
		NonWorkingDates:        f.Workdays.NonWorkingOverrides.Values(),
		DisplayOnlyWorkingDays: f.Workdays.DisplayOnlyWorkingDays,
		Provisional:            f.Provisional,
	}
}

// ------------------------------ Task fixtures ----------------------------

// TaskFixture represents a deterministic task row.
type TaskFixture struct {
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

// TaskOption configures the generated task fixture.
type TaskOption func(*TaskFixture)

// NewTaskFixture returns a deterministic task fixture with optional overrides.
func NewTaskFixture(opts ...TaskOption) TaskFixture {
	idx := atomic.AddUint64(&taskCounter, 1)
	fixture := TaskFixture{
		ID:        fmt.Sprintf("task-%03d", idx),
		ProjectID: fmt.Sprintf("project-%03d", idx),
		Name:      fmt.Sprintf("作業 %03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTaskID overrides the generated task ID.
func WithTaskID(id string) TaskOption {
	return func(f *TaskFixture) {
		f.ID = id
	}
}

// WithTaskProject sets the owning project ID.
func WithTaskProject(projectID string) TaskOption {
	return func(f *TaskFixture) {
		f.ProjectID = projectID
	}
}

// WithTaskName overrides the generated task name.
func WithTaskName(name string) TaskOption {
	return func(f *TaskFixture) {
		f.Name = name
	}
}

// WithTaskAssignee sets the assignee label.
func WithTaskAssignee(assignee string) TaskOption {
	return func(f *TaskFixture) {
		f.Assignee = assignee
	}
}

// WithTaskTrade sets the optional trade reference.
func WithTaskTrade(tradeID string) TaskOption {
	return func(f *TaskFixture) {
		id := tradeID
		f.TradeID = &id
	}
}

// WithoutTaskTrade clears the trade reference.
func WithoutTaskTrade() TaskOption {
	return func(f *TaskFixture) {
		f.TradeID = nil
	}
}

// WithTaskColor sets the optional bar color override.
func WithTaskColor(color string) TaskOption {
	return func(f *TaskFixture) {
		value := color
		f.Color = &value
	}
}

// WithoutTaskColor clears the bar color override.
func WithoutTaskColor() TaskOption {
	return func(f *TaskFixture) {
		f.Color = nil
	}
}

// WithTaskOrder sets the display order.
func WithTaskOrder(order int) TaskOption {
	return func(f *TaskFixture) {
		f.DisplayOrder = order
	}
}

// WithTaskSchedule sets the full per-scale schedule.
func WithTaskSchedule(schedule timescale.Schedule) TaskOption {
	return func(f *TaskFixture) {
		f.Schedule = copySchedule(schedule)
	}
}

// WithTaskInterval sets the interval for a single scale, leaving the
// other scales untouched.
func WithTaskInterval(scale timescale.Scale, start, end int) TaskOption {
	return func(f *TaskFixture) {
		iv := &timescale.Interval{Start: start, End: end}
		switch scale {
		case timescale.ScaleHour:
			f.Schedule.Hour = iv
		case timescale.ScaleWeek:
			f.Schedule.Week = iv
		case timescale.ScaleMonth:
			f.Schedule.Month = iv
		default:
			f.Schedule.Day = iv
		}
	}
}

// WithTaskCreatedAt sets the created timestamp on the fixture.
func WithTaskCreatedAt(t time.Time) TaskOption {
	return func(f *TaskFixture) {
		f.CreatedAt = t
	}
}

// WithTaskUpdatedAt sets the updated timestamp on the fixture.
func WithTaskUpdatedAt(t time.Time) TaskOption {
	return func(f *TaskFixture) {
		f.UpdatedAt = t
	}
}

// WithTaskTimestamps sets both created and updated timestamps.
func WithTaskTimestamps(created, updated time.Time) TaskOption {
	return func(f *TaskFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Task value.
func (f TaskFixture) Application() application.Task {
	return application.Task{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		Name:         f.Name,
		Assignee:     f.Assignee,
		TradeID:      copyStringPtr(f.TradeID),
		Color:        copyStringPtr(f.Color),
		DisplayOrder: f.DisplayOrder,
		Schedule:     copySchedule(f.Schedule),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Task value.
func (f TaskFixture) Persistence() persistence.Task {
	return persistence.Task{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		Name:         f.Name,
		Assignee:     f.Assignee,
		TradeID:      copyStringPtr(f.TradeID),
		Color:        copyStringPtr(f.Color),
		DisplayOrder: f.DisplayOrder,
		Schedule:     copySchedule(f.Schedule),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.TaskInput.
func (f TaskFixture) Input() application.TaskInput {
	return application.TaskInput{
		Name:     f.Name,
		Assignee: f.Assignee,
		TradeID:  copyStringPtr(f.TradeID),
		Color:    copyStringPtr(f.Color),
	}
}

// ----------------------------- Trade fixtures ----------------------------

var tradePalette = []string{"#1E88E5", "#43A047", "#F4511E", "#8E24AA"}

// TradeFixture represents a deterministic trade master entry.
type TradeFixture struct {
	ID           string
	Name         string
	Color        string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TradeOption configures the generated trade fixture.
type TradeOption func(*TradeFixture)

// NewTradeFixture returns a deterministic trade fixture with optional overrides.
func NewTradeFixture(opts ...TradeOption) TradeFixture {
	idx := atomic.AddUint64(&tradeCounter, 1)
	fixture := TradeFixture{
		ID:           fmt.Sprintf("trade-%03d", idx),
		Name:         fmt.Sprintf("職種 %03d", idx),
		Color:        tradePalette[idx%uint64(len(tradePalette))],
		DisplayOrder: int(idx),
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTradeID overrides the generated trade ID.
func WithTradeID(id string) TradeOption {
	return func(f *TradeFixture) {
		f.ID = id
	}
}

// WithTradeName overrides the generated trade name.
func WithTradeName(name string) TradeOption {
	return func(f *TradeFixture) {
		f.Name = name
	}
}

// WithTradeColor overrides the generated color.
func WithTradeColor(color string) TradeOption {
	return func(f *TradeFixture) {
		f.Color = color
	}
}

// WithTradeOrder sets the display order.
func WithTradeOrder(order int) TradeOption {
	return func(f *TradeFixture) {
		f.DisplayOrder = order
	}
}

// WithTradeTimestamps sets both created and updated timestamps.
func WithTradeTimestamps(created, updated time.Time) TradeOption {
	return func(f *TradeFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Trade value.
func (f TradeFixture) Application() application.Trade {
	return application.Trade{
		ID:           f.ID,
		Name:         f.Name,
		Color:        f.Color,
		DisplayOrder: f.DisplayOrder,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Trade value.
func (f TradeFixture) Persistence() persistence.Trade {
	return persistence.Trade{
		ID:           f.ID,
		Name:         f.Name,
		Color:        f.Color,
		DisplayOrder: f.DisplayOrder,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.TradeInput.
func (f TradeFixture) Input() application.TradeInput {
	return application.TradeInput{
		Name:         f.Name,
		Color:        f.Color,
		DisplayOrder: f.DisplayOrder,
	}
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user account.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("担当者 %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserDisabled sets the disabled flag on the fixture.
func WithUserDisabled(disabled bool) UserOption {
	return func(f *UserFixture) {
		f.Disabled = disabled
	}
}

// WithUserCreatedAt sets the created timestamp on the fixture.
func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = t
	}
}

// WithUserUpdatedAt sets the updated timestamp on the fixture.
func WithUserUpdatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.UpdatedAt = t
	}
}

// WithUserTimestamps sets both created and updated timestamps.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Registration returns the fixture as registration parameters carrying
// the provided plain password.
func (f UserFixture) Registration(password string) application.RegisterUserParams {
	return application.RegisterUserParams{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Password:    password,
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionUserID sets the user ID.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = id
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionCreatedAt sets the created timestamp.
func WithSessionCreatedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.CreatedAt = t
	}
}

// WithSessionUpdatedAt sets the updated timestamp.
func WithSessionUpdatedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.UpdatedAt = t
	}
}

// WithSessionTimestamps sets both created and updated timestamps.
func WithSessionTimestamps(created, updated time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// WithoutSessionRevoked clears any revoked timestamp.
func WithoutSessionRevoked() SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = nil
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f SessionFixture) Principal() application.Principal {
	return application.Principal{UserID: f.UserID, SessionID: f.ID}
}

// helpers to deep copy optional fields.

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyInterval(src *timescale.Interval) *timescale.Interval {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copySchedule(s timescale.Schedule) timescale.Schedule {
	return timescale.Schedule{
		Hour:  copyInterval(s.Hour),
		Day:   copyInterval(s.Day),
		Week:  copyInterval(s.Week),
		Month: copyInterval(s.Month),
	}
}
