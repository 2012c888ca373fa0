package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/eventboard/internal/application"
)

func TestAuthRoutes(t *testing.T) {
	t.Parallel()

	t.Run("register, duplicate, and validation", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)

		h.registerAndLogin("alice@example.com")

		rec := h.do(http.MethodPost, "/register", map[string]string{
			"user_name": "A", "surname": "B", "email": "alice@example.com",
			"password": "x", "user_group": "g", "phone": "p",
		}, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "duplicate_email", decodeBody[errorResponse](t, rec).Code)

		rec = h.do(http.MethodPost, "/register", map[string]string{"email": "bob@example.com"}, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "validation", body.Code)
		assert.Contains(t, body.Fields, "password")
		assert.Contains(t, body.Fields, "phone")
		assert.NotContains(t, body.Fields, "email")

		rec = h.do(http.MethodPost, "/register", "{not json", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login returns token and expiry", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		token := h.registerAndLogin("alice@example.com")

		claims, err := h.tokens.Verify(token)
		require.NoError(t, err)
		assert.False(t, claims.IsAdmin)

		rec := h.do(http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "pw123"}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[loginResponse](t, rec)
		expiresAt, err := time.Parse(time.RFC3339Nano, resp.ExpiresAt)
		require.NoError(t, err)
		assert.True(t, expiresAt.Equal(h.clock.Now().Truncate(time.Second).Add(time.Hour)))

		for _, creds := range []map[string]string{
			{"email": "alice@example.com", "password": "wrong"},
			{"email": "nobody@example.com", "password": "pw123"},
		} {
			rec := h.do(http.MethodPost, "/login", creds, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "invalid_credentials", decodeBody[errorResponse](t, rec).Code)
		}

		rec = h.do(http.MethodPost, "/login", map[string]string{"email": "alice@example.com"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("me reports identity and recomputes admin", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t, "root@example.com")
		token := h.registerAndLogin("root@example.com")

		rec := h.do(http.MethodGet, "/me", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		me := decodeBody[meResponse](t, rec)
		assert.Equal(t, "root@example.com", me.Email)
		assert.True(t, me.IsAdmin)
		assert.Equal(t, h.clock.Now().Truncate(time.Second).Add(time.Hour).Unix(), me.Exp)
	})

	t.Run("me rejects missing, invalid, and expired tokens", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		token := h.registerAndLogin("alice@example.com")

		rec := h.do(http.MethodGet, "/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "missing_credential", decodeBody[errorResponse](t, rec).Code)

		rec = h.do(http.MethodGet, "/me", nil, "garbage")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "malformed_token", decodeBody[errorResponse](t, rec).Code)

		foreignTokens, err := application.NewTokenManager(application.TokenConfig{Secret: "someone-else", Now: h.clock.Now})
		require.NoError(t, err)
		claims, err := h.tokens.Verify(token)
		require.NoError(t, err)
		forged, err := foreignTokens.Issue(application.User{ID: claims.UserID, Email: claims.Email}, true)
		require.NoError(t, err)
		rec = h.do(http.MethodGet, "/me", nil, forged.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "invalid_signature", decodeBody[errorResponse](t, rec).Code)

		expiry := h.clock.Now().Truncate(time.Second).Add(time.Hour)
		h.clock.AdvanceTo(expiry.Add(301 * time.Second))
		rec = h.do(http.MethodGet, "/me", nil, token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "token_expired", body.Code)
		assert.Equal(t, expiry.UTC().Format(time.RFC3339Nano), body.ExpiredAt)
		assert.Equal(t, h.clock.Now().UTC().Format(time.RFC3339Nano), body.Now)
	})
}

func TestEventRoutes(t *testing.T) {
	t.Parallel()

	t.Run("reads are public", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)

		rec := h.do(http.MethodGet, "/events", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]eventDTO](t, rec), 1)

		rec = h.do(http.MethodGet, "/events/event-1", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "event-1", decodeBody[eventDTO](t, rec).ID)

		rec = h.do(http.MethodGet, "/events/unknown", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mutations require an admin token", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t, "root@example.com")
		member := h.registerAndLogin("alice@example.com")
		input := map[string]any{"name": "Fair", "date": "2024-06-01", "place": "Park", "image": "fair.png", "price": 15}

		rec := h.do(http.MethodPost, "/events", input, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = h.do(http.MethodPost, "/events", input, member)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", decodeBody[errorResponse](t, rec).Code)

		rec = h.do(http.MethodPatch, "/events/event-1", map[string]string{"name": "x"}, member)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = h.do(http.MethodDelete, "/events/event-1", nil, member)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, h.events.lastPrincipal.UserID, "service must not run for rejected callers")
	})

	t.Run("admin creates, patches, and deletes", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t, "root@example.com")
		admin := h.registerAndLogin("root@example.com")

		rec := h.do(http.MethodPost, "/events", map[string]any{
			"name": "Fair", "date": "2024-06-01", "place": "Park", "image": "fair.png", "price": 15,
		}, admin)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decodeBody[eventDTO](t, rec)
		assert.Equal(t, "15", created.Price)
		assert.True(t, h.events.lastPrincipal.IsAdmin)

		rec = h.do(http.MethodPost, "/events", map[string]any{"date": "2024-06-01"}, admin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = h.do(http.MethodPatch, "/events/"+created.ID, map[string]any{"price": "20"}, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "20", decodeBody[eventDTO](t, rec).Price)
		assert.Nil(t, h.events.lastPatch.Name)

		rec = h.do(http.MethodPatch, "/events/unknown", map[string]any{"price": "20"}, admin)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = h.do(http.MethodDelete, "/events/"+created.ID, nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeBody[successResponse](t, rec).Success)
	})
}

func TestSubscriptionRoutes(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)
	token := h.registerAndLogin("alice@example.com")

	rec := h.do(http.MethodPost, "/subscribe", map[string]string{"event_id": "event-1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/subscribe", map[string]string{"event_id": "event-1"}, token)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(http.MethodPost, "/subscribe", map[string]string{"event_id": "event-1"}, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/subscriptions/event-1", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[subscriptionStatusResponse](t, rec).Subscribed)

	rec = h.do(http.MethodPost, "/subscribe", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(http.MethodPost, "/subscribe", map[string]string{"event_id": "missing"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, "/unsubscribe", map[string]string{"event_id": "event-1"}, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodPost, "/unsubscribe", map[string]string{"event_id": "event-1"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/my-subscriptions", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestTimeRoute(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)

	rec := h.do(http.MethodGet, "/time", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[timeResponse](t, rec)
	assert.Equal(t, h.clock.Now().UnixMilli(), resp.NowMs)
	assert.Equal(t, "2024-01-02T15:04:05.000Z", resp.NowISO)
}

func TestDebugTokenRoute(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t, "admin@example.com")
	token := h.registerAndLogin("admin@example.com")

	type debugBody struct {
		NowSec  int64          `json:"nowSec"`
		NowISO  string         `json:"nowIso"`
		Header  map[string]any `json:"header"`
		Payload map[string]any `json:"payload"`
	}

	t.Run("decodes a query token", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/debug-token?t="+token, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decodeBody[debugBody](t, rec)
		assert.Equal(t, h.clock.Now().Unix(), body.NowSec)
		assert.Equal(t, "HS256", body.Header["alg"])
		assert.Equal(t, "admin@example.com", body.Payload["email"])
		assert.Equal(t, true, body.Payload["isAdmin"])
		assert.EqualValues(t, h.clock.Now().Truncate(time.Second).Add(time.Hour).Unix(), body.Payload["exp"])
	})

	t.Run("prefers the bearer header", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/debug-token?t=ignored", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin@example.com", decodeBody[debugBody](t, rec).Payload["email"])
	})

	t.Run("requires a token", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/debug-token", nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "no token provided", body.Error)
	})

	t.Run("undecodable token yields only the clock", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/debug-token?t=garbage", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[debugBody](t, rec)
		assert.Nil(t, body.Header)
		assert.Nil(t, body.Payload)
		assert.NotEmpty(t, body.NowISO)
	})
}
