package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

// missingRecord reports a lookup miss from either the application or the
// persistence layer.
func missingRecord(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

// CredentialStore exposes user credential lookup operations required by the auth service.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates authentication flows such as login and session refresh.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionRepository
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions SessionRepository, verify PasswordVerifier, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, verify, idGenerator, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions SessionRepository, verify PasswordVerifier, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a new session token.
// Expired session rows are pruned opportunistically on every login.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	password := params.Password

	logger := s.loggerWith(ctx, "Authenticate",
		"email", email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if missingRecord(err) {
			err = ErrInvalidCredentials
			return
		}
		return
	}

	if creds.Disabled {
		err = ErrAccountDisabled
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	id := s.idGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}

	session := Session{
		ID:        id,
		UserID:    creds.User.ID,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return
		}

		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = AuthenticateResult{User: creds.User, Session: session}
	return
}

// RefreshSession rotates an existing session token, extending its validity window.
func (s *AuthService) RefreshSession(ctx context.Context, token string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "RefreshSession",
		"token_provided", trimmed != "",
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session refresh failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"session_id", session.ID,
			"user_id", session.UserID,
		).InfoContext(ctx, "session refreshed")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		session = Session{}
		if missingRecord(err) {
			err = ErrInvalidCredentials
		}
		return
	}

	now := s.now()
	if err = sessionUsable(session, now); err != nil {
		session = Session{}
		return
	}

	newToken := s.tokenGenerator()
	if newToken == "" {
		newToken = session.Token
	}

	session.Token = newToken
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.sessionTTL)

	session, err = s.sessions.UpdateSession(ctx, session)
	if err != nil {
		session = Session{}
		return
	}
	return
}

// RevokeSession invalidates an existing session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", trimmed != "")

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if missingRecord(err) {
			logger.ErrorContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}

// ValidateSession verifies that the provided token corresponds to an active session and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).InfoContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if missingRecord(err) {
			err = ErrUnauthorized
		}
		return
	}

	if err = sessionUsable(session, s.now()); err != nil {
		return
	}

	var user User
	user, err = s.credentials.GetUser(ctx, session.UserID)
	if err != nil {
		if missingRecord(err) {
			err = ErrUnauthorized
		}
		return
	}

	principal = Principal{UserID: user.ID, SessionID: session.ID}
	return
}

func sessionUsable(session Session, now time.Time) error {
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return ErrSessionRevoked
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		return ErrSessionExpired
	}
	return nil
}
