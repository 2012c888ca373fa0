package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/eventboard/internal/application"
	"github.com/example/eventboard/internal/testfixtures"
)

// Packages from internal/http outwards assert with testify; the domain and
// storage packages below them use plain testing.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memoryCredentialStore struct {
	mu      sync.Mutex
	byID    map[string]application.UserCredentials
	byEmail map[string]string
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{
		byID:    make(map[string]application.UserCredentials),
		byEmail: make(map[string]string),
	}
}

func (s *memoryCredentialStore) CreateUser(_ context.Context, user application.User, hash string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return application.User{}, application.ErrDuplicateEmail
	}
	s.byID[user.ID] = application.UserCredentials{User: user, PasswordHash: hash}
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *memoryCredentialStore) GetUser(_ context.Context, id string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.byID[id]
	if !ok {
		return application.User{}, application.ErrNotFound
	}
	return creds.User, nil
}

func (s *memoryCredentialStore) GetUserCredentialsByEmail(_ context.Context, email string) (application.UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return application.UserCredentials{}, application.ErrNotFound
	}
	return s.byID[id], nil
}

// fakeEventService records the principal each mutation ran with.
type fakeEventService struct {
	mu            sync.Mutex
	events        map[string]application.Event
	lastPrincipal application.Principal
	lastPatch     application.EventPatch
}

func newFakeEventService(events ...application.Event) *fakeEventService {
	svc := &fakeEventService{events: make(map[string]application.Event)}
	for _, event := range events {
		svc.events[event.ID] = event
	}
	return svc
}

func (f *fakeEventService) List(context.Context) ([]application.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]application.Event, 0, len(f.events))
	for _, event := range f.events {
		events = append(events, event)
	}
	return events, nil
}

func (f *fakeEventService) Get(_ context.Context, id string) (application.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return application.Event{}, application.ErrNotFound
	}
	return event, nil
}

func (f *fakeEventService) Create(_ context.Context, principal application.Principal, input application.EventInput) (application.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrincipal = principal
	if input.Name == "" {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"name": "name is required"}}
		return application.Event{}, vErr
	}
	event := application.Event{
		ID:          "event-new",
		Name:        input.Name,
		Date:        input.Date,
		Place:       input.Place,
		Image:       input.Image,
		Price:       input.Price,
		Description: input.Description,
	}
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeEventService) Update(_ context.Context, principal application.Principal, id string, patch application.EventPatch) (application.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrincipal = principal
	f.lastPatch = patch
	event, ok := f.events[id]
	if !ok {
		return application.Event{}, application.ErrNotFound
	}
	if patch.Price != nil {
		event.Price = *patch.Price
	}
	if patch.Name != nil {
		event.Name = *patch.Name
	}
	f.events[id] = event
	return event, nil
}

func (f *fakeEventService) Delete(_ context.Context, principal application.Principal, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrincipal = principal
	if _, ok := f.events[id]; !ok {
		return application.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeSubscriptionService struct {
	mu   sync.Mutex
	subs map[string]bool
}

func (f *fakeSubscriptionService) Subscribe(_ context.Context, principal application.Principal, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if eventID == "" {
		return false, &application.ValidationError{FieldErrors: map[string]string{"event_id": "event_id is required"}}
	}
	if eventID == "missing" {
		return false, application.ErrNotFound
	}
	key := principal.UserID + "/" + eventID
	if f.subs[key] {
		return false, nil
	}
	f.subs[key] = true
	return true, nil
}

func (f *fakeSubscriptionService) Unsubscribe(_ context.Context, principal application.Principal, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := principal.UserID + "/" + eventID
	if !f.subs[key] {
		return application.ErrNotFound
	}
	delete(f.subs, key)
	return nil
}

func (f *fakeSubscriptionService) IsSubscribed(_ context.Context, principal application.Principal, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[principal.UserID+"/"+eventID], nil
}

func (f *fakeSubscriptionService) ListForUser(context.Context, application.Principal) ([]application.Event, error) {
	return []application.Event{}, nil
}

type apiHarness struct {
	t       *testing.T
	handler http.Handler
	clock   *testfixtures.Clock
	tokens  *application.TokenManager
	events  *fakeEventService
	subs    *fakeSubscriptionService
	auth    *application.AuthService
}

func newAPIHarness(t *testing.T, adminEmails ...string) *apiHarness {
	t.Helper()

	factory := testfixtures.NewServiceFactory()
	tokens, err := factory.NewTokenManager(time.Hour, 300*time.Second)
	require.NoError(t, err)
	auth, err := factory.NewAuthService(testfixtures.AuthServiceDeps{
		Credentials: newMemoryCredentialStore(),
		Tokens:      tokens,
		AdminEmails: adminEmails,
		Logger:      discardLogger,
	})
	require.NoError(t, err)

	events := newFakeEventService(testfixtures.NewEventFixture(testfixtures.WithEventID("event-1")).Application())
	subs := &fakeSubscriptionService{subs: make(map[string]bool)}

	handler := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(auth, discardLogger),
		Events:        NewEventHandler(events, discardLogger),
		Subscriptions: NewSubscriptionHandler(subs, discardLogger),
		Time:          NewTimeHandler(factory.Clock.NowFunc()),
		DebugToken:    NewDebugTokenHandler(factory.Clock.NowFunc(), discardLogger),
		Authenticator: auth,
		Logger:        discardLogger,
		MaxBodyBytes:  4 << 10,
		Middleware:    []func(http.Handler) http.Handler{RequestLogger(discardLogger)},
	})

	return &apiHarness{
		t:       t,
		handler: handler,
		clock:   factory.Clock,
		tokens:  tokens,
		events:  events,
		subs:    subs,
		auth:    auth,
	}
}

func (h *apiHarness) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a user through the API and returns its token.
func (h *apiHarness) registerAndLogin(email string) string {
	h.t.Helper()

	rec := h.do(http.MethodPost, "/register", map[string]string{
		"user_name":  "Test",
		"surname":    "User",
		"email":      email,
		"password":   "pw123",
		"user_group": "members",
		"phone":      "555-0100",
	}, "")
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/login", map[string]string{"email": email, "password": "pw123"}, "")
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
