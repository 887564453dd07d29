package application

import (
	"errors"
	"strings"
	"testing"
)

func TestCreatePasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	// Small parameters keep the KDF cheap in tests.
	params := Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	hash, err := CreatePasswordHash("現場監督のパスワード", params)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Fatalf("hash is not in PHC format: %q", hash)
	}

	if err := VerifyPassword(hash, "現場監督のパスワード"); err != nil {
		t.Fatalf("VerifyPassword rejected the original password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	// Salts are random, so hashing twice must not repeat.
	again, err := CreatePasswordHash("現場監督のパスワード", params)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	if hash == again {
		t.Fatalf("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
		want error
	}{
		{name: "empty", hash: "", want: ErrInvalidPasswordHash},
		{name: "plain text", hash: "not-a-hash", want: ErrInvalidPasswordHash},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA", want: ErrInvalidPasswordHash},
		{name: "missing sections", hash: "$argon2id$v=19$m=8192,t=1,p=1", want: ErrInvalidPasswordHash},
		{name: "future version", hash: "$argon2id$v=99$m=8192,t=1,p=1$c2FsdA$aGFzaA", want: ErrIncompatiblePasswordVersion},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := VerifyPassword(tc.hash, "password"); !errors.Is(err, tc.want) {
				t.Fatalf("VerifyPassword(%q) error = %v, want %v", tc.hash, err, tc.want)
			}
		})
	}
}

func TestVerifyPasswordUsesEmbeddedParameters(t *testing.T) {
	t.Parallel()

	// A hash created under one parameter set must verify even when the
	// defaults have different costs: the stored string is authoritative.
	weak := Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	hash, err := CreatePasswordHash("secret-word", weak)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}

	if err := VerifyPassword(hash, "secret-word"); err != nil {
		t.Fatalf("VerifyPassword failed with embedded parameters: %v", err)
	}
}
