package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/eventboard/internal/application"
	"github.com/example/eventboard/internal/persistence"
)

var (
	userCounter  uint64
	eventCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	DisplayName  string
	Surname      string
	Email        string
	Password     string
	PasswordHash string
	Group        string
	Phone        string
	CreatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:           id,
		DisplayName:  fmt.Sprintf("User %03d", idx),
		Surname:      "Tester",
		Email:        fmt.Sprintf("%s@example.com", id),
		Password:     fmt.Sprintf("secret-%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Group:        "members",
		Phone:        fmt.Sprintf("555-%04d", idx),
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPassword overrides the plaintext used by RegisterParams.
func WithUserPassword(password string) UserOption {
	return func(f *UserFixture) {
		f.Password = password
	}
}

// WithUserPasswordHash overrides the stored digest.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserCreatedAt sets the created timestamp on the fixture.
func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		Surname:     f.Surname,
		Email:       f.Email,
		Group:       f.Group,
		Phone:       f.Phone,
		CreatedAt:   f.CreatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// RegisterParams returns the registration form for the fixture.
func (f UserFixture) RegisterParams() application.RegisterParams {
	return application.RegisterParams{
		DisplayName: f.DisplayName,
		Surname:     f.Surname,
		Email:       f.Email,
		Password:    f.Password,
		Group:       f.Group,
		Phone:       f.Phone,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal(isAdmin bool) application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email, IsAdmin: isAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		DisplayName:  f.DisplayName,
		Surname:      f.Surname,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		Group:        f.Group,
		Phone:        f.Phone,
		CreatedAt:    f.CreatedAt,
	}
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic event record.
type EventFixture struct {
	ID          string
	Name        string
	Date        string
	Place       string
	Image       string
	Price       string
	Description string
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. Dates advance one day per fixture.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	fixture := EventFixture{
		ID:          id,
		Name:        fmt.Sprintf("Event %03d", idx),
		Date:        referenceTime.AddDate(0, 0, int(idx)).Format("2006-01-02"),
		Place:       "Main Hall",
		Image:       fmt.Sprintf("%s.png", id),
		Price:       "10",
		Description: fmt.Sprintf("Description for event %03d", idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventName overrides the generated name.
func WithEventName(name string) EventOption {
	return func(f *EventFixture) {
		f.Name = name
	}
}

// WithEventDate overrides the generated date.
func WithEventDate(date string) EventOption {
	return func(f *EventFixture) {
		f.Date = date
	}
}

// WithEventPlace overrides the generated place.
func WithEventPlace(place string) EventOption {
	return func(f *EventFixture) {
		f.Place = place
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:          f.ID,
		Name:        f.Name,
		Date:        f.Date,
		Place:       f.Place,
		Image:       f.Image,
		Price:       f.Price,
		Description: f.Description,
	}
}

// Input returns the fixture as an application.EventInput.
func (f EventFixture) Input() application.EventInput {
	return application.EventInput{
		Name:        f.Name,
		Date:        f.Date,
		Place:       f.Place,
		Image:       f.Image,
		Price:       f.Price,
		Description: f.Description,
	}
}

// Persistence returns the fixture as a persistence.Event value.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:          f.ID,
		Name:        f.Name,
		Date:        f.Date,
		Place:       f.Place,
		Image:       f.Image,
		Price:       f.Price,
		Description: f.Description,
	}
}
