package application

import (
	"errors"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"phone": "required", "email": "invalid"}}
	if got := withFields.Error(); got != "validation failed: email, phone" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	v := &ValidationError{}
	v.add("field", "bad")
	if !v.HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestExpiredError(t *testing.T) {
	t.Parallel()

	expiredAt := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	now := expiredAt.Add(10 * time.Minute)
	var err error = &ExpiredError{ExpiredAt: expiredAt, Now: now}

	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ExpiredError to match ErrTokenExpired")
	}
	if got := err.Error(); got != "token expired at 2024-03-01T10:00:00Z (now 2024-03-01T10:10:00Z)" {
		t.Fatalf("unexpected message %q", got)
	}
	if ErrorKind(err) != "token_expired" {
		t.Fatalf("unexpected kind %q", ErrorKind(err))
	}
}
