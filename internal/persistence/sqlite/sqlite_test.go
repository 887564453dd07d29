package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

var refTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

func openTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "gantt_test.db"))
	pool, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}

func seedUser(t *testing.T, pool *ConnectionPool, id string) persistence.User {
	t.Helper()

	user := persistence.User{
		ID:           id,
		Email:        id + "@example.co.jp",
		DisplayName:  "現場担当者",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CreatedAt:    refTime,
		UpdatedAt:    refTime,
	}
	if err := NewUserRepository(pool).CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return user
}

func TestMigrateFreshDatabase(t *testing.T) {
	pool := openTestPool(t)

	version, err := pool.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "003" {
		t.Fatalf("schema version = %q, want 003", version)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := openTestPool(t)

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int
	err := pool.DB().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count)
	if err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != len(migrations) {
		t.Fatalf("applied %d migrations, want %d", count, len(migrations))
	}
}

func TestMigrateRejectsUnknownVersion(t *testing.T) {
	pool := openTestPool(t)

	_, err := pool.DB().Exec(
		`INSERT INTO schema_migrations (version, description, applied_at, execution_ms) VALUES ('999', 'future', ?, 0)`,
		refTime.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("insert future version: %v", err)
	}

	if err := pool.Migrate(context.Background()); err == nil {
		t.Fatalf("expected migration to refuse an unknown applied version")
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	pool := openTestPool(t)

	boom := errors.New("boom")
	err := pool.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO trades (id, name, color, display_order, created_at, updated_at) VALUES ('t1', '仮設', '#ff0000', 0, ?, ?)`,
			refTime.Format(time.RFC3339), refTime.Format(time.RFC3339),
		); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	var count int
	if err := pool.DB().QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&count); err != nil {
		t.Fatalf("count trades: %v", err)
	}
	if count != 0 {
		t.Fatalf("rollback left %d rows behind", count)
	}
}

func TestErrorMapperDuplicate(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "user-dup")

	dup := persistence.User{
		ID:           "user-dup-2",
		Email:        "user-dup@example.co.jp",
		DisplayName:  "重複",
		PasswordHash: "hash",
		CreatedAt:    refTime,
		UpdatedAt:    refTime,
	}
	err := NewUserRepository(pool).CreateUser(context.Background(), dup)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestErrorMapperNotFound(t *testing.T) {
	pool := openTestPool(t)

	_, err := NewUserRepository(pool).GetUser(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRetryHelperStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	permanent := errors.New("no such table")
	err := NewRetryHelper(DefaultRetryConfig()).WithRetry(context.Background(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not be retried, got %d calls", calls)
	}
}

func TestRetryHelperRetriesLockErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := NewRetryHelper(RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}).WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}
