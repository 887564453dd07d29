package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

const (
	maxDisplayNameRunes = 60
	minPasswordLength   = 8
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, creds UserCredentials) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentials(ctx context.Context, id string) (UserCredentials, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error
}

// PasswordHasher derives a storable hash from a plain password.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates account registration and profile maintenance.
type UserService struct {
	users          UserRepository
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hash PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time) *UserService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hashPassword: hash, verifyPassword: verify, idGenerator: idGenerator, now: now}
}

// Register validates input and creates a new account. Registration is
// open; the first request a user makes is creating their own account.
func (s *UserService) Register(ctx context.Context, params RegisterUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}

	email := normalizeAccountEmail(params.Email)
	displayName := strings.TrimSpace(params.DisplayName)

	vErr := &ValidationError{}
	validateEmail(email, vErr)
	validateDisplayName(displayName, vErr)
	validatePassword(params.Password, vErr)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	createdAt := s.now()
	user := User{
		ID:          s.idGenerator(),
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	if s.users == nil {
		return user, nil
	}

	persisted, err := s.users.CreateUser(ctx, UserCredentials{User: user, PasswordHash: hash})
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return persisted, nil
}

// GetProfile returns the acting user's account.
func (s *UserService) GetProfile(ctx context.Context, principal Principal) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if principal.UserID == "" {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return user, nil
}

// UpdateProfile validates input and rewrites the acting user's account
// attributes.
func (s *UserService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if params.Principal.UserID == "" {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	existing, err := s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}

	email := normalizeAccountEmail(params.Email)
	displayName := strings.TrimSpace(params.DisplayName)

	vErr := &ValidationError{}
	validateEmail(email, vErr)
	validateDisplayName(displayName, vErr)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	updated := existing
	updated.Email = email
	updated.DisplayName = displayName
	updated.UpdatedAt = s.now()

	persisted, err := s.users.UpdateUser(ctx, updated)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return persisted, nil
}

// ChangePassword re-verifies the current password before storing a hash
// of the new one.
func (s *UserService) ChangePassword(ctx context.Context, params ChangePasswordParams) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	creds, err := s.users.GetUserCredentials(ctx, params.Principal.UserID)
	if err != nil {
		return mapUserRepoError(err)
	}

	if err := s.verifyPassword(creds.PasswordHash, params.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}

	vErr := &ValidationError{}
	validatePassword(params.NewPassword, vErr)
	if vErr.HasErrors() {
		return vErr
	}

	hash, err := s.hashPassword(params.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, params.Principal.UserID, hash, s.now()); err != nil {
		return mapUserRepoError(err)
	}
	return nil
}

func normalizeAccountEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string, vErr *ValidationError) {
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}
}

func validateDisplayName(displayName string, vErr *ValidationError) {
	if displayName == "" {
		vErr.add("display_name", "display name is required")
	} else if utf8.RuneCountInString(displayName) > maxDisplayNameRunes {
		vErr.add("display_name", fmt.Sprintf("display name must be at most %d characters", maxDisplayNameRunes))
	}
}

func validatePassword(password string, vErr *ValidationError) {
	if len(password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("account", "related records are missing")
		return vErr
	}
	return err
}
