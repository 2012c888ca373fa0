package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/eventboard/internal/application"
)

type authenticatorFunc func(ctx context.Context, token string) (application.Principal, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (application.Principal, error) {
	return f(ctx, token)
}

func TestRequireToken(t *testing.T) {
	t.Parallel()

	auth := authenticatorFunc(func(_ context.Context, token string) (application.Principal, error) {
		switch token {
		case "":
			return application.Principal{}, application.ErrMissingCredential
		case "good":
			return application.Principal{UserID: "user-1", IsAdmin: true}, nil
		default:
			return application.Principal{}, application.ErrInvalidSignature
		}
	})

	var seen application.Principal
	handler := RequireToken(auth, discardLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusForbidden},
		{"valid token", "Bearer good", http.StatusNoContent},
		{"lowercase scheme", "bearer good", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, tc.name)
	}
	assert.Equal(t, "user-1", seen.UserID)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	called := false
	handler := RequireAdmin(discardLogger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	run := func(ctx context.Context) int {
		req := httptest.NewRequest(http.MethodPost, "/events", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(context.Background()))
	assert.Equal(t, http.StatusForbidden, run(ContextWithPrincipal(context.Background(), application.Principal{UserID: "u"})))
	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, run(ContextWithPrincipal(context.Background(), application.Principal{UserID: "u", IsAdmin: true})))
	assert.True(t, called)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/events/event-1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodPatch)

	rec = h.do(http.MethodGet, "/events", nil, "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterFallbacks(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)

	rec := h.do(http.MethodGet, "/nowhere", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[errorResponse](t, rec).Code)

	rec = h.do(http.MethodPut, "/events", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLimitRequestBody(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)

	oversized := `{"email":"a@example.com","password":"` + strings.Repeat("x", 8<<10) + `"}`
	rec := h.do(http.MethodPost, "/login", oversized, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
