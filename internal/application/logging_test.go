package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	vErr := &ValidationError{}
	vErr.add("name", "name is required")

	tests := map[string]struct {
		err  error
		want string
	}{
		"nil":          {err: nil, want: ""},
		"unauthorized": {err: ErrUnauthorized, want: "unauthorized"},
		"forbidden":    {err: ErrForbidden, want: "forbidden"},
		"not found":    {err: fmt.Errorf("load: %w", ErrNotFound), want: "not_found"},
		"trade in use": {err: ErrTradeInUse, want: "trade_in_use"},
		"expired":      {err: ErrSessionExpired, want: "session_expired"},
		"validation":   {err: vErr, want: "validation"},
		"unexpected":   {err: errors.New("boom"), want: "unexpected"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
