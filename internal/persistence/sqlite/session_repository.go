package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository on SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const sessionColumns = `id, user_id, token, expires_at, created_at, updated_at, revoked_at`

// CreateSession inserts a new session and returns the stored row.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.UserID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		nullTimestamp(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.Map(err)
	}
	return session, nil
}

// GetSession retrieves a session by its token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token)
	session, err := scanSession(row)
	if err != nil {
		return persistence.Session{}, r.mapper.Map(err)
	}
	return session, nil
}

// UpdateSession rewrites a session row, keyed by ID.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `
		UPDATE sessions
		SET token = ?, expires_at = ?, updated_at = ?, revoked_at = ?
		WHERE id = ?`,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.UpdatedAt),
		nullTimestamp(session.RevokedAt),
		session.ID,
	)
	if err != nil {
		return persistence.Session{}, r.mapper.Map(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession stamps the session revoked and returns the stored row.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, err := r.GetSession(ctx, token)
	if err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt != nil {
		return session, nil
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	return r.UpdateSession(ctx, session)
}

// DeleteExpiredSessions removes sessions that expired at or before the
// reference time.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		formatTime(reference))
	return r.mapper.Map(err)
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session              persistence.Session
		expiresAt            string
		createdAt, updatedAt string
		revokedAt            = nullTimestamp(nil)
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	)
	if err != nil {
		return persistence.Session{}, err
	}
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt, err = timePtr(revokedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}
