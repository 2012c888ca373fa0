package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrForbidden is returned when an authenticated principal lacks permission for an operation.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrDuplicateEmail is returned when registering an e-mail that is already taken.
	ErrDuplicateEmail = errors.New("application: email already registered")
	// ErrInvalidCredentials covers both unknown e-mail and wrong password.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrMissingCredential is returned when no token accompanies a protected request.
	ErrMissingCredential = errors.New("application: missing credential")
	// ErrMalformedToken is returned for tokens that cannot be decoded or lack required claims.
	ErrMalformedToken = errors.New("application: malformed token")
	// ErrInvalidSignature is returned when the token signature or algorithm does not verify.
	ErrInvalidSignature = errors.New("application: invalid token signature")
	// ErrTokenExpired is matched by *ExpiredError.
	ErrTokenExpired = errors.New("application: token expired")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ExpiredError reports a token whose expiry, plus the clock tolerance, has
// passed. Both instants are exposed so clients can diagnose clock skew.
type ExpiredError struct {
	ExpiredAt time.Time
	Now       time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("token expired at %s (now %s)",
		e.ExpiredAt.UTC().Format(time.RFC3339), e.Now.UTC().Format(time.RFC3339))
}

func (e *ExpiredError) Unwrap() error {
	return ErrTokenExpired
}

// ConfigurationError is a fatal startup problem.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}
