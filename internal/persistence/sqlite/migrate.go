package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migration is one schema step compiled into the binary.
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// migrations lists every schema step in execution order. Versions are
// zero-padded so lexical and numeric order agree.
var migrations = []Migration{
	{
		Version:     "001",
		Description: "create users and sessions",
		SQL: `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	disabled INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token TEXT NOT NULL UNIQUE,
	expires_at TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	revoked_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
`,
	},
	{
		Version:     "002",
		Description: "create trade master list",
		SQL: `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`,
	},
	{
		Version:     "003",
		Description: "create projects, override dates, and tasks",
		SQL: `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	anchor_date TEXT NOT NULL,
	active_scale TEXT NOT NULL DEFAULT 'day',
	hour_start INTEGER NOT NULL DEFAULT 8,
	hour_end INTEGER NOT NULL DEFAULT 18,
	window_day INTEGER NOT NULL DEFAULT 3,
	window_week INTEGER NOT NULL DEFAULT 7,
	window_month INTEGER NOT NULL DEFAULT 14,
	skip_saturday INTEGER NOT NULL DEFAULT 0,
	skip_sunday INTEGER NOT NULL DEFAULT 1,
	skip_holiday INTEGER NOT NULL DEFAULT 1,
	display_working_only INTEGER NOT NULL DEFAULT 0,
	provisional INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);

CREATE TABLE IF NOT EXISTS project_override_dates (
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('working', 'nonworking')),
	PRIMARY KEY (project_id, date)
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	assignee TEXT NOT NULL DEFAULT '',
	trade_id TEXT REFERENCES trades(id),
	color TEXT,
	display_order INTEGER NOT NULL,
	hour_start INTEGER,
	hour_end INTEGER,
	day_start INTEGER,
	day_end INTEGER,
	week_start INTEGER,
	week_end INTEGER,
	month_start INTEGER,
	month_end INTEGER,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_project_order ON tasks(project_id, display_order);
CREATE INDEX IF NOT EXISTS idx_tasks_trade ON tasks(trade_id);
`,
	},
}

const versionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at TEXT NOT NULL,
	execution_ms INTEGER NOT NULL
)`

// Migrate applies every pending migration in order, each inside its own
// transaction. Lock contention during startup is retried.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	retry := NewRetryHelper(DefaultRetryConfig())
	return retry.WithRetry(ctx, func() error {
		return cp.migrateOnce(ctx)
	})
}

func (cp *ConnectionPool) migrateOnce(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, versionTable); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	applied, err := cp.appliedVersions(ctx)
	if err != nil {
		return err
	}

	// Refuse to run against a database migrated by a newer binary.
	for version := range applied {
		if !knownVersion(version) {
			return fmt.Errorf("sqlite: database has unknown migration version %s", version)
		}
	}

	for _, m := range migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		started := time.Now()
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("sqlite: migration %s: %w", m.Version, err)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, description, applied_at, execution_ms) VALUES (?, ?, ?, ?)`,
				m.Version,
				m.Description,
				time.Now().UTC().Format(time.RFC3339),
				time.Since(started).Milliseconds(),
			)
			if err != nil {
				return fmt.Errorf("sqlite: record migration %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or the
// empty string for a fresh database.
func (cp *ConnectionPool) SchemaVersion(ctx context.Context) (string, error) {
	if _, err := cp.db.ExecContext(ctx, versionTable); err != nil {
		return "", fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}
	var version sql.NullString
	err := cp.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return "", fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if !version.Valid {
		return "", nil
	}
	return version.String, nil
}

func (cp *ConnectionPool) appliedVersions(ctx context.Context) (map[string]struct{}, error) {
	rows, err := cp.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("sqlite: scan version: %w", err)
		}
		applied[v] = struct{}{}
	}
	return applied, rows.Err()
}

func knownVersion(version string) bool {
	for _, m := range migrations {
		if m.Version == version {
			return true
		}
	}
	return false
}
