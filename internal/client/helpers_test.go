package client

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	referenceNow  = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
)

// fakeServer scripts the endpoints the client and guard depend on.
type fakeServer struct {
	mu sync.Mutex

	meStatus     int
	meAdmin      bool
	refreshToken string
	loginToken   string

	meCalls      int
	refreshCalls int
	lastAuth     string
	lastBody     map[string]any
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()

	fs := &fakeServer{meStatus: http.StatusOK}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if body.Password != "pw123" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials", "code": "invalid_credentials"})
			return
		}
		writeTestJSON(w, http.StatusOK, LoginResponse{Token: fs.loginToken, ExpiresAt: "2024-03-01T10:00:00Z"})
	})

	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.meCalls++
		fs.lastAuth = r.Header.Get("Authorization")
		if fs.meStatus != http.StatusOK {
			writeTestJSON(w, fs.meStatus, map[string]string{"error": "token expired", "code": "token_expired"})
			return
		}
		writeTestJSON(w, http.StatusOK, Identity{ID: "user-1", Email: "alice@example.com", IsAdmin: fs.meAdmin, Exp: 1709290800})
	})

	mux.HandleFunc("POST /refresh", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.refreshCalls++
		if fs.refreshToken == "" {
			http.NotFound(w, r)
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]string{"token": fs.refreshToken})
	})

	mux.HandleFunc("POST /subscribe", func(w http.ResponseWriter, r *http.Request) {
		fs.recordBody(r)
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.lastAuth = r.Header.Get("Authorization")
		if fs.lastBody["event_id"] == "event-1" {
			writeTestJSON(w, http.StatusCreated, map[string]bool{"success": true})
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("PATCH /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		fs.recordBody(r)
		writeTestJSON(w, http.StatusOK, Event{ID: r.PathValue("id"), Name: "Renamed"})
	})

	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []Event{{ID: "event-1", Name: "Concert", Date: "2024-05-01"}})
	})

	mux.HandleFunc("GET /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no such event")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return fs, server
}

func (fs *fakeServer) recordBody(r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	fs.mu.Lock()
	fs.lastBody = body
	fs.mu.Unlock()
}

func (fs *fakeServer) set(fn func(*fakeServer)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fn(fs)
}

func (fs *fakeServer) counts() (me, refresh int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.meCalls, fs.refreshCalls
}

func newTestClient(t *testing.T, server *httptest.Server, store TokenStore) *Client {
	t.Helper()
	c, err := New(server.URL,
		WithHTTPClient(server.Client()),
		WithTokenStore(store),
		WithClock(func() time.Time { return referenceNow }),
		WithLogger(discardLogger),
	)
	require.NoError(t, err)
	return c
}

// signTestToken builds a token the client can decode; the signature is never
// checked on this side.
func signTestToken(t *testing.T, isAdmin bool, exp time.Time) string {
	t.Helper()
	claims := tokenClaims{
		UserID:  "user-1",
		Email:   "alice@example.com",
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return token
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func storeWith(token string) *MemoryTokenStore {
	store := &MemoryTokenStore{}
	if strings.TrimSpace(token) != "" {
		_ = store.Save(token)
	}
	return store
}
