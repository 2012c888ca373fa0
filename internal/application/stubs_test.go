package application

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Domain, storage and config packages test with plain testing and
// hand-written stubs. testify is used from internal/http outwards.
var testArgon2idParams = Argon2idParams{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

var testReferenceTime = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func sequentialIDs(ids ...string) func() string {
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(ids) == 0 {
			return "id-overflow"
		}
		id := ids[0]
		ids = ids[1:]
		return id
	}
}

// credentialStoreStub enforces e-mail uniqueness under a mutex, mirroring
// the UNIQUE constraint of the real store.
type credentialStoreStub struct {
	mu      sync.Mutex
	byID    map[string]UserCredentials
	byEmail map[string]string
	err     error
}

func newCredentialStoreStub() *credentialStoreStub {
	return &credentialStoreStub{
		byID:    make(map[string]UserCredentials),
		byEmail: make(map[string]string),
	}
}

func (s *credentialStoreStub) CreateUser(_ context.Context, user User, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return User{}, s.err
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return User{}, ErrDuplicateEmail
	}
	s.byID[user.ID] = UserCredentials{User: user, PasswordHash: passwordHash}
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *credentialStoreStub) GetUser(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return creds.User, nil
}

func (s *credentialStoreStub) GetUserCredentialsByEmail(_ context.Context, email string) (UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return UserCredentials{}, s.err
	}
	id, ok := s.byEmail[email]
	if !ok {
		return UserCredentials{}, ErrNotFound
	}
	return s.byID[id], nil
}

type eventStoreStub struct {
	mu     sync.Mutex
	events map[string]Event
}

func newEventStoreStub(events ...Event) *eventStoreStub {
	store := &eventStoreStub{events: make(map[string]Event)}
	for _, event := range events {
		store.events[event.ID] = event
	}
	return store
}

func (s *eventStoreStub) CreateEvent(_ context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	return event, nil
}

func (s *eventStoreStub) InsertEventIfAbsent(_ context.Context, event Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; ok {
		return false, nil
	}
	s.events[event.ID] = event
	return true, nil
}

func (s *eventStoreStub) UpdateEvent(_ context.Context, id string, patch EventPatch) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&event.Name, patch.Name)
	apply(&event.Date, patch.Date)
	apply(&event.Place, patch.Place)
	apply(&event.Image, patch.Image)
	apply(&event.Price, patch.Price)
	apply(&event.Description, patch.Description)
	s.events[id] = event
	return event, nil
}

func (s *eventStoreStub) GetEvent(_ context.Context, id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (s *eventStoreStub) ListEvents(context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events, nil
}

func (s *eventStoreStub) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

type subscriptionKey struct {
	userID  string
	eventID string
}

type subscriptionStoreStub struct {
	mu     sync.Mutex
	events *eventStoreStub
	subs   map[subscriptionKey]time.Time
}

func newSubscriptionStoreStub(events *eventStoreStub) *subscriptionStoreStub {
	return &subscriptionStoreStub{events: events, subs: make(map[subscriptionKey]time.Time)}
}

func (s *subscriptionStoreStub) AddSubscription(_ context.Context, userID, eventID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subscriptionKey{userID, eventID}
	if _, ok := s.subs[key]; ok {
		return false, nil
	}
	s.subs[key] = at
	return true, nil
}

func (s *subscriptionStoreStub) RemoveSubscription(_ context.Context, userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subscriptionKey{userID, eventID}
	if _, ok := s.subs[key]; !ok {
		return ErrNotFound
	}
	delete(s.subs, key)
	return nil
}

func (s *subscriptionStoreStub) HasSubscription(_ context.Context, userID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[subscriptionKey{userID, eventID}]
	return ok, nil
}

func (s *subscriptionStoreStub) ListSubscribedEvents(ctx context.Context, userID string) ([]Event, error) {
	s.mu.Lock()
	var ids []string
	for key := range s.subs {
		if key.userID == userID {
			ids = append(ids, key.eventID)
		}
	}
	s.mu.Unlock()

	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		event, err := s.events.GetEvent(ctx, id)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events, nil
}
