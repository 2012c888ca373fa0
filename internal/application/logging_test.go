package application

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                    nil,
		"forbidden":           fmt.Errorf("wrapped: %w", ErrForbidden),
		"not_found":           ErrNotFound,
		"duplicate_email":     ErrDuplicateEmail,
		"invalid_credentials": ErrInvalidCredentials,
		"missing_credential":  ErrMissingCredential,
		"malformed_token":     ErrMalformedToken,
		"invalid_signature":   ErrInvalidSignature,
		"validation":          &ValidationError{FieldErrors: map[string]string{"email": "required"}},
		"configuration":       &ConfigurationError{Setting: "secret", Reason: "empty"},
		"unexpected":          errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
