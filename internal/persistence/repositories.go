package persistence

import "context"

// UserRepository stores user accounts. Users are never updated or removed.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// EventRepository exposes CRUD operations for events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	// InsertEventIfAbsent stores the event unless its ID already exists and
	// reports whether a row was written.
	InsertEventIfAbsent(ctx context.Context, event Event) (bool, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// SubscriptionRepository stores user subscriptions to events.
type SubscriptionRepository interface {
	// AddSubscription reports whether a new subscription was created; an
	// existing one is left as is.
	AddSubscription(ctx context.Context, sub Subscription) (bool, error)
	RemoveSubscription(ctx context.Context, userID, eventID string) error
	HasSubscription(ctx context.Context, userID, eventID string) (bool, error)
	ListSubscribedEvents(ctx context.Context, userID string) ([]Event, error)
}
