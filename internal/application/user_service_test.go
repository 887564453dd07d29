package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

type userRepoStub struct {
	createErr error
	created   UserCredentials

	getUser User
	getErr  error

	creds    UserCredentials
	credsErr error

	updateErr error
	updated   User

	passwordErr       error
	passwordHash      string
	passwordChangedAt time.Time
}

func (r *userRepoStub) CreateUser(ctx context.Context, creds UserCredentials) (User, error) {
	if r.createErr != nil {
		return User{}, r.createErr
	}
	r.created = creds
	return creds.User, nil
}

func (r *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	if r.getErr != nil {
		return User{}, r.getErr
	}
	if r.getUser.ID == "" {
		return User{}, persistence.ErrNotFound
	}
	return r.getUser, nil
}

func (r *userRepoStub) GetUserCredentials(ctx context.Context, id string) (UserCredentials, error) {
	if r.credsErr != nil {
		return UserCredentials{}, r.credsErr
	}
	if r.creds.User.ID == "" {
		return UserCredentials{}, persistence.ErrNotFound
	}
	return r.creds, nil
}

func (r *userRepoStub) UpdateUser(ctx context.Context, user User) (User, error) {
	if r.updateErr != nil {
		return User{}, r.updateErr
	}
	r.updated = user
	return user, nil
}

func (r *userRepoStub) UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	if r.passwordErr != nil {
		return r.passwordErr
	}
	r.passwordHash = passwordHash
	r.passwordChangedAt = changedAt
	return nil
}

func stubHasher(hash string) PasswordHasher {
	return func(password string) (string, error) {
		return hash + ":" + password, nil
	}
}

func stubVerifier(valid string) PasswordVerifier {
	return func(hashedPassword, password string) error {
		if password != valid {
			return ErrInvalidCredentials
		}
		return nil
	}
}

func TestUserService_Register(t *testing.T) {
	t.Run("validates registration input", func(t *testing.T) {
		svc := NewUserService(&userRepoStub{}, stubHasher("h"), nil, nil, nil)

		_, err := svc.Register(context.Background(), RegisterUserParams{
			Email:       "not-an-address",
			DisplayName: "  ",
			Password:    "short",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"email", "display_name", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("persists a hashed credential", func(t *testing.T) {
		repo := &userRepoStub{}
		now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
		svc := NewUserService(repo, stubHasher("argon"), nil, func() string { return "user-1" }, func() time.Time { return now })

		created, err := svc.Register(context.Background(), RegisterUserParams{
			Email:       "  Genba.Tanto@Example.co.jp ",
			DisplayName: " 現場担当者 ",
			Password:    "correct horse battery",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.User.ID != "user-1" {
			t.Fatalf("identity not assigned: %+v", repo.created.User)
		}
		if repo.created.User.Email != "genba.tanto@example.co.jp" {
			t.Fatalf("expected normalized email, got %q", repo.created.User.Email)
		}
		if repo.created.User.DisplayName != "現場担当者" {
			t.Fatalf("expected trimmed display name, got %q", repo.created.User.DisplayName)
		}
		if repo.created.PasswordHash != "argon:correct horse battery" {
			t.Fatalf("expected hashed password, got %q", repo.created.PasswordHash)
		}
		if !repo.created.User.CreatedAt.Equal(now) {
			t.Fatalf("expected timestamps from injected clock, got %+v", repo.created.User)
		}
		if created.ID != "user-1" {
			t.Fatalf("expected returned user to include generated ID, got %q", created.ID)
		}
	})

	t.Run("maps duplicate emails", func(t *testing.T) {
		repo := &userRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewUserService(repo, stubHasher("h"), nil, nil, nil)

		_, err := svc.Register(context.Background(), RegisterUserParams{
			Email:       "genba.tanto@example.co.jp",
			DisplayName: "現場担当者",
			Password:    "correct horse battery",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestUserService_GetProfile(t *testing.T) {
	t.Run("requires an authenticated principal", func(t *testing.T) {
		svc := NewUserService(&userRepoStub{}, nil, nil, nil, nil)

		_, err := svc.GetProfile(context.Background(), Principal{})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("returns the acting user's account", func(t *testing.T) {
		repo := &userRepoStub{getUser: User{ID: "user-1", Email: "genba.tanto@example.co.jp", DisplayName: "現場担当者"}}
		svc := NewUserService(repo, nil, nil, nil, nil)

		got, err := svc.GetProfile(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got.DisplayName != "現場担当者" {
			t.Fatalf("unexpected user: %+v", got)
		}
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	existing := User{
		ID:          "user-1",
		Email:       "genba.tanto@example.co.jp",
		DisplayName: "現場担当者",
		CreatedAt:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("validates profile input", func(t *testing.T) {
		repo := &userRepoStub{getUser: existing}
		svc := NewUserService(repo, nil, nil, nil, nil)

		_, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal:   Principal{UserID: "user-1"},
			Email:       "not-an-address",
			DisplayName: "",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Fatalf("expected email validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["display_name"]; !ok {
			t.Fatalf("expected display_name validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rewrites profile attributes", func(t *testing.T) {
		repo := &userRepoStub{getUser: existing}
		now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
		svc := NewUserService(repo, nil, nil, nil, func() time.Time { return now })

		_, err := svc.UpdateProfile(context.Background(), UpdateProfileParams{
			Principal:   Principal{UserID: "user-1"},
			Email:       " Kouji.Bucho@Example.co.jp ",
			DisplayName: "工事部長",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.updated.Email != "kouji.bucho@example.co.jp" || repo.updated.DisplayName != "工事部長" {
			t.Fatalf("unexpected user: %+v", repo.updated)
		}
		if !repo.updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp from injected clock, got %v", repo.updated.UpdatedAt)
		}
		if !repo.updated.CreatedAt.Equal(existing.CreatedAt) {
			t.Fatalf("created timestamp must not move")
		}
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	creds := UserCredentials{
		User:         User{ID: "user-1", Email: "genba.tanto@example.co.jp"},
		PasswordHash: "argon:old password",
	}

	t.Run("rejects a wrong current password", func(t *testing.T) {
		repo := &userRepoStub{creds: creds}
		svc := NewUserService(repo, stubHasher("argon"), stubVerifier("old password"), nil, nil)

		err := svc.ChangePassword(context.Background(), ChangePasswordParams{
			Principal:       Principal{UserID: "user-1"},
			CurrentPassword: "wrong password",
			NewPassword:     "new password",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if repo.passwordHash != "" {
			t.Fatalf("repository must not be called, stored %q", repo.passwordHash)
		}
	})

	t.Run("validates the new password", func(t *testing.T) {
		repo := &userRepoStub{creds: creds}
		svc := NewUserService(repo, stubHasher("argon"), stubVerifier("old password"), nil, nil)

		err := svc.ChangePassword(context.Background(), ChangePasswordParams{
			Principal:       Principal{UserID: "user-1"},
			CurrentPassword: "old password",
			NewPassword:     "short",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["password"]; !ok {
			t.Fatalf("expected password validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("stores the new hash", func(t *testing.T) {
		repo := &userRepoStub{creds: creds}
		now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
		svc := NewUserService(repo, stubHasher("argon"), stubVerifier("old password"), nil, func() time.Time { return now })

		err := svc.ChangePassword(context.Background(), ChangePasswordParams{
			Principal:       Principal{UserID: "user-1"},
			CurrentPassword: "old password",
			NewPassword:     "new password",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.passwordHash != "argon:new password" {
			t.Fatalf("stored hash = %q", repo.passwordHash)
		}
		if !repo.passwordChangedAt.Equal(now) {
			t.Fatalf("expected change timestamp from injected clock, got %v", repo.passwordChangedAt)
		}
	})
}
