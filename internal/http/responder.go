package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/eventboard/internal/application"
	"github.com/example/eventboard/internal/logging"
)

var (
	errBadRequestBody   = errors.New("invalid request body")
	errRequestTooLarge  = errors.New("request body too large")
	errRouteNotFound    = errors.New("not found")
	errMethodNotAllowed = errors.New("method not allowed")
	errNoTokenProvided  = errors.New("no token provided")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Error: message, Code: statusCode(status)})
}

// handleServiceError maps application errors onto statuses and the error body.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	kind := application.ErrorKind(err)
	body := errorResponse{Code: kind}
	var status int

	switch {
	case errors.Is(err, application.ErrTokenExpired):
		status = http.StatusUnauthorized
		body.Error = "token expired"
		var expired *application.ExpiredError
		if errors.As(err, &expired) {
			body.ExpiredAt = formatInstant(expired.ExpiredAt)
			body.Now = formatInstant(expired.Now)
		}
	case errors.Is(err, application.ErrMissingCredential):
		status = http.StatusUnauthorized
		body.Error = "missing bearer token"
	case errors.Is(err, application.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Error = "invalid credentials"
	case errors.Is(err, application.ErrMalformedToken), errors.Is(err, application.ErrInvalidSignature):
		status = http.StatusForbidden
		body.Error = "invalid token"
	case errors.Is(err, application.ErrForbidden):
		status = http.StatusForbidden
		body.Error = "admin privileges required"
	case errors.Is(err, application.ErrNotFound):
		status = http.StatusNotFound
		body.Error = "not found"
	case errors.Is(err, application.ErrDuplicateEmail):
		status = http.StatusConflict
		body.Error = "user already exists"
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			status = http.StatusBadRequest
			body.Error = validationMessage(vErr)
			body.Fields = vErr.FieldErrors
			break
		}

		status = http.StatusInternalServerError
		body.Error = statusMessage(status)
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err, "error_kind", kind)
	}

	r.writeJSON(ctx, w, status, body)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func validationMessage(vErr *application.ValidationError) string {
	if msg, ok := vErr.FieldErrors["event"]; ok && len(vErr.FieldErrors) == 1 {
		return msg
	}
	return "missing required fields"
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal server error"
	}
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	default:
		return "unexpected"
	}
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	ExpiredAt string            `json:"expiredAt,omitempty"`
	Now       string            `json:"now,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}
