package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Projects persistence.ProjectRepository
	Tasks    persistence.TaskRepository
	Trades   persistence.TradeRepository
	Users    persistence.UserRepository
	Sessions persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary database file
// that is migrated automatically. Callers may optionally invoke Close, but the
// helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "gantt.db")

	pool, err := sqlite.Open(sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Projects: sqlite.NewProjectRepository(pool),
		Tasks:    sqlite.NewTaskRepository(pool),
		Trades:   sqlite.NewTradeRepository(pool),
		Users:    sqlite.NewUserRepository(pool),
		Sessions: sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
