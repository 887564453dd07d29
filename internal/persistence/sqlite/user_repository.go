package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

// UserRepository implements persistence.UserRepository on SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const userColumns = `id, email, display_name, password_hash, disabled, created_at, updated_at`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new account. Emails are stored lowercased so
// the unique index is case-insensitive.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.PasswordHash,
		user.Disabled,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return r.mapper.Map(err)
}

// UpdateUser rewrites an account row.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrNotFound
	}
	if user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	result, err := r.helper.Exec(ctx, `
		UPDATE users
		SET email = ?, display_name = ?, password_hash = ?, disabled = ?, updated_at = ?
		WHERE id = ?`,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.PasswordHash,
		user.Disabled,
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return r.mapper.Map(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves an account by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return persistence.User{}, r.mapper.Map(err)
	}
	return user, nil
}

// GetUserByEmail retrieves an account by its lowercased email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.helper.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		normalizeEmail(email))
	user, err := scanUser(row)
	if err != nil {
		return persistence.User{}, r.mapper.Map(err)
	}
	return user, nil
}

// ListUsers retrieves all accounts ordered by display name.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY display_name, id`)
	if err != nil {
		return nil, r.mapper.Map(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.mapper.Map(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.Map(err)
	}
	return users, nil
}

// DeleteUser removes an account; sessions and projects cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return r.mapper.Map(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		createdAt, updatedAt string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Disabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
