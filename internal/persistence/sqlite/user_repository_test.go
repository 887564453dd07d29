package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	pool := openTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := seedUser(t, pool, "user-rt")

	got, err := repo.GetUser(ctx, "user-rt")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got != user {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, user)
	}

	got.DisplayName = "工事部長"
	got.Disabled = true
	got.UpdatedAt = refTime.Add(1)
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	reread, err := repo.GetUser(ctx, "user-rt")
	if err != nil {
		t.Fatalf("GetUser after update: %v", err)
	}
	if reread.DisplayName != "工事部長" || !reread.Disabled {
		t.Fatalf("update not persisted: %+v", reread)
	}
}

func TestUserRepositoryEmailLookupIsCaseInsensitive(t *testing.T) {
	pool := openTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := persistence.User{
		ID:           "user-email",
		Email:        "Genba.Tanto@Example.co.jp",
		DisplayName:  "現場担当者",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CreatedAt:    refTime,
		UpdatedAt:    refTime,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "  genba.tanto@example.co.jp ")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "user-email" {
		t.Fatalf("wrong user: %+v", got)
	}
	if got.Email != "genba.tanto@example.co.jp" {
		t.Fatalf("email should be stored normalized, got %s", got.Email)
	}

	if _, err := repo.GetUserByEmail(ctx, "missing@example.co.jp"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	pool := openTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	seedUser(t, pool, "user-1")
	dup := persistence.User{
		ID:           "user-2",
		Email:        "USER-1@example.co.jp",
		DisplayName:  "別人",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CreatedAt:    refTime,
		UpdatedAt:    refTime,
	}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepositoryDeleteCascadesSessions(t *testing.T) {
	pool := openTestPool(t)
	repo := NewUserRepository(pool)
	sessions := NewSessionRepository(pool)
	ctx := context.Background()

	user := seedUser(t, pool, "user-del")
	session := persistence.Session{
		ID:        "sess-del",
		UserID:    user.ID,
		Token:     "token-del",
		ExpiresAt: refTime.Add(24 * time.Hour),
		CreatedAt: refTime,
		UpdatedAt: refTime,
	}
	if _, err := sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := sessions.GetSession(ctx, "token-del"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("session should cascade with the user, got %v", err)
	}
}
