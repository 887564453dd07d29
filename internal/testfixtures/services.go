package testfixtures

import (
	"log/slog"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar/holiday"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// ProjectServiceDeps captures dependencies for constructing a project service.
type ProjectServiceDeps struct {
	Projects    application.ProjectRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewProjectService builds a project service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewProjectService(deps ProjectServiceDeps) *application.ProjectService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewProjectServiceWithLogger(
		deps.Projects,
		idGen,
		now,
		deps.Logger,
	)
}

// TaskServiceDeps captures dependencies for constructing a task service.
type TaskServiceDeps struct {
	Tasks       application.TaskRepository
	Projects    application.ProjectDirectory
	Trades      application.TradeCatalog
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTaskService builds a task service using the supplied dependencies.
func (f *ServiceFactory) NewTaskService(deps TaskServiceDeps) *application.TaskService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTaskServiceWithLogger(
		deps.Tasks,
		deps.Projects,
		deps.Trades,
		idGen,
		now,
		deps.Logger,
	)
}

// ChartServiceDeps captures dependencies for constructing a chart service.
type ChartServiceDeps struct {
	Projects application.ProjectDirectory
	Tasks    application.TaskDirectory
	Holidays *holiday.Table
	Logger   *slog.Logger
}

// NewChartService builds a chart service using the supplied dependencies.
// The chart service takes no clock or ID generator; it derives everything
// from the project it renders.
func (f *ServiceFactory) NewChartService(deps ChartServiceDeps) *application.ChartService {
	return application.NewChartServiceWithLogger(
		deps.Projects,
		deps.Tasks,
		deps.Holidays,
		deps.Logger,
	)
}

// TradeServiceDeps captures dependencies for constructing a trade service.
type TradeServiceDeps struct {
	Trades      application.TradeRepository
	Usage       application.TradeUsage
	IDGenerator func() string
	Now         func() time.Time
}

// NewTradeService builds a trade service using the supplied dependencies.
func (f *ServiceFactory) NewTradeService(deps TradeServiceDeps) *application.TradeService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTradeService(
		deps.Trades,
		deps.Usage,
		idGen,
		now,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
// Nil Hash and Verify fall back to the production Argon2id implementation.
type UserServiceDeps struct {
	Users       application.UserRepository
	Hash        application.PasswordHasher
	Verify      application.PasswordVerifier
	IDGenerator func() string
	Now         func() time.Time
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewUserService(
		deps.Users,
		deps.Hash,
		deps.Verify,
		idGen,
		now,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		idGen,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
