package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without valid session tokens", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name            string
			cookieToken     *http.Cookie
			headerToken     string
			lookupError     error
			expectedStatus  int
			expectedMessage string
		}{
			{
				name:            "missing credentials",
				expectedStatus:  http.StatusUnauthorized,
				expectedMessage: "認証トークンを指定してください",
			},
			{
				name:            "expired session",
				cookieToken:     &http.Cookie{Name: "session_token", Value: "expired-token"},
				lookupError:     application.ErrSessionExpired,
				expectedStatus:  http.StatusUnauthorized,
				expectedMessage: "セッションの有効期限が切れています。再度ログインしてください。",
			},
			{
				name:            "revoked session",
				cookieToken:     &http.Cookie{Name: "session_token", Value: "revoked-token"},
				lookupError:     application.ErrSessionRevoked,
				expectedStatus:  http.StatusUnauthorized,
				expectedMessage: "セッションは無効化されています。再度ログインしてください。",
			},
			{
				name:            "unknown session",
				headerToken:     "Bearer unknown-token",
				lookupError:     application.ErrNotFound,
				expectedStatus:  http.StatusUnauthorized,
				expectedMessage: "セッションが見つかりません。再度ログインしてください。",
			},
			{
				name:            "validator failure",
				cookieToken:     &http.Cookie{Name: "session_token", Value: "transient-error"},
				lookupError:     errors.New("storage unavailable"),
				expectedStatus:  http.StatusInternalServerError,
				expectedMessage: "セッション検証中にエラーが発生しました。",
			},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				if tc.cookieToken != nil {
					req.AddCookie(tc.cookieToken)
				}
				if tc.headerToken != "" {
					req.Header.Set("Authorization", tc.headerToken)
				}

				recorder := httptest.NewRecorder()

				handler := RequireSession(fakeSessionValidator{err: tc.lookupError}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("next handler should not be called when authentication fails")
				}))
				handler.ServeHTTP(recorder, req)

				if recorder.Code != tc.expectedStatus {
					t.Fatalf("expected status %d, got %d", tc.expectedStatus, recorder.Code)
				}

				var body struct {
					Message string `json:"message"`
				}
				if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode error response: %v", err)
				}
				if body.Message != tc.expectedMessage {
					t.Fatalf("expected message %q, got %q", tc.expectedMessage, body.Message)
				}
			})
		}
	})

	t.Run("attaches authenticated principal to request context", func(t *testing.T) {
		t.Parallel()

		principal := application.Principal{UserID: "user-123", SessionID: "session-456"}

		tests := []struct {
			name    string
			prepare func(*http.Request)
		}{
			{
				name: "cookie token",
				prepare: func(req *http.Request) {
					req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})
				},
			},
			{
				name: "bearer header token",
				prepare: func(req *http.Request) {
					req.Header.Set("Authorization", "Bearer valid-token")
				},
			},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				tc.prepare(req)

				recorder := httptest.NewRecorder()

				var captured application.Principal
				var capturedOK bool

				handler := RequireSession(fakeSessionValidator{principal: principal}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					captured, capturedOK = PrincipalFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				}))
				handler.ServeHTTP(recorder, req)

				if recorder.Code != http.StatusOK {
					t.Fatalf("expected status 200, got %d", recorder.Code)
				}
				if !capturedOK {
					t.Fatal("expected principal in request context")
				}
				if captured != principal {
					t.Fatalf("expected principal %+v, got %+v", principal, captured)
				}
			})
		}
	})

	t.Run("forwards the presented token to the validator", func(t *testing.T) {
		t.Parallel()

		validator := &recordingSessionValidator{principal: application.Principal{UserID: "user-1", SessionID: "session-1"}}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		recorder := httptest.NewRecorder()

		handler := RequireSession(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(recorder, req)

		if validator.token != "header-token" {
			t.Fatalf("expected validator to receive %q, got %q", "header-token", validator.token)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("injects a request scoped logger into the context", func(t *testing.T) {
		t.Parallel()

		var sawLogger bool

		handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogger = LoggerFromContext(r.Context()) != nil
			w.WriteHeader(http.StatusNoContent)
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if !sawLogger {
			t.Fatal("expected logger to be attached to the request context")
		}
	})
}

func TestExtractTokenFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("prefers the bearer header over the cookie", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})

		if token := extractTokenFromRequest(req); token != "header-token" {
			t.Fatalf("expected header token, got %q", token)
		}
	})

	t.Run("falls back to the session cookie", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})

		if token := extractTokenFromRequest(req); token != "cookie-token" {
			t.Fatalf("expected cookie token, got %q", token)
		}
	})

	t.Run("ignores malformed authorization headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")

		if token := extractTokenFromRequest(req); token != "" {
			t.Fatalf("expected empty token, got %q", token)
		}
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSessionValidator struct {
	principal application.Principal
	err       error
}

func (f fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	if f.err != nil {
		return application.Principal{}, f.err
	}
	if strings.TrimSpace(token) == "" {
		return application.Principal{}, application.ErrUnauthorized
	}
	return f.principal, nil
}

type recordingSessionValidator struct {
	principal application.Principal
	token     string
}

func (r *recordingSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	r.token = token
	return r.principal, nil
}
