package persistence

import (
	"context"
	"time"
)

// ProjectRepository exposes CRUD operations for projects, including
// their workday override dates.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project Project) error
	UpdateProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// TaskRepository exposes CRUD and ordering operations for tasks.
// Implementations keep DisplayOrder dense: creation appends at the end
// of the project's list, deletion closes the gap, and MoveTask
// resequences the affected rows in one transaction.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) (Task, error)
	UpdateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
	MoveTask(ctx context.Context, projectID, taskID string, position int) error
	CountTasksByTrade(ctx context.Context, tradeID string) (int, error)
}

// TradeRepository exposes CRUD operations for the trade master list.
type TradeRepository interface {
	CreateTrade(ctx context.Context, trade Trade) error
	UpdateTrade(ctx context.Context, trade Trade) error
	GetTrade(ctx context.Context, id string) (Trade, error)
	ListTrades(ctx context.Context) ([]Trade, error)
	DeleteTrade(ctx context.Context, id string) error
}

// UserRepository exposes CRUD operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
