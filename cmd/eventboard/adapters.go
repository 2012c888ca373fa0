package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/eventboard/internal/application"
	"github.com/example/eventboard/internal/persistence"
)

// translateStorageError maps persistence sentinels onto the application
// taxonomy so the HTTP layer sees one set of errors.
func translateStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return application.ErrNotFound
	}
	return err
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return application.User{}, application.ErrDuplicateEmail
		}
		return application.User{}, translateStorageError(err)
	}
	return user, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, translateStorageError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, translateStorageError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

type eventStoreAdapter struct {
	repo persistence.EventRepository
}

func newEventStoreAdapter(repo persistence.EventRepository) *eventStoreAdapter {
	return &eventStoreAdapter{repo: repo}
}

func (a *eventStoreAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, translateStorageError(err)
	}
	return event, nil
}

func (a *eventStoreAdapter) InsertEventIfAbsent(ctx context.Context, event application.Event) (bool, error) {
	added, err := a.repo.InsertEventIfAbsent(ctx, toPersistenceEvent(event))
	return added, translateStorageError(err)
}

func (a *eventStoreAdapter) UpdateEvent(ctx context.Context, id string, patch application.EventPatch) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, id, persistence.EventPatch(patch)); err != nil {
		return application.Event{}, translateStorageError(err)
	}
	return a.GetEvent(ctx, id)
}

func (a *eventStoreAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, translateStorageError(err)
	}
	return application.Event(stored), nil
}

func (a *eventStoreAdapter) ListEvents(ctx context.Context) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx)
	if err != nil {
		return nil, translateStorageError(err)
	}
	return toApplicationEvents(models), nil
}

func (a *eventStoreAdapter) DeleteEvent(ctx context.Context, id string) error {
	return translateStorageError(a.repo.DeleteEvent(ctx, id))
}

type subscriptionStoreAdapter struct {
	repo persistence.SubscriptionRepository
}

func newSubscriptionStoreAdapter(repo persistence.SubscriptionRepository) *subscriptionStoreAdapter {
	return &subscriptionStoreAdapter{repo: repo}
}

func (a *subscriptionStoreAdapter) AddSubscription(ctx context.Context, userID, eventID string, at time.Time) (bool, error) {
	created, err := a.repo.AddSubscription(ctx, persistence.Subscription{
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: at,
	})
	return created, translateStorageError(err)
}

func (a *subscriptionStoreAdapter) RemoveSubscription(ctx context.Context, userID, eventID string) error {
	return translateStorageError(a.repo.RemoveSubscription(ctx, userID, eventID))
}

func (a *subscriptionStoreAdapter) HasSubscription(ctx context.Context, userID, eventID string) (bool, error) {
	ok, err := a.repo.HasSubscription(ctx, userID, eventID)
	return ok, translateStorageError(err)
}

func (a *subscriptionStoreAdapter) ListSubscribedEvents(ctx context.Context, userID string) ([]application.Event, error) {
	models, err := a.repo.ListSubscribedEvents(ctx, userID)
	if err != nil {
		return nil, translateStorageError(err)
	}
	return toApplicationEvents(models), nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		DisplayName: model.DisplayName,
		Surname:     model.Surname,
		Email:       model.Email,
		Group:       model.Group,
		Phone:       model.Phone,
		CreatedAt:   model.CreatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		DisplayName:  user.DisplayName,
		Surname:      user.Surname,
		Email:        user.Email,
		PasswordHash: passwordHash,
		Group:        user.Group,
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event(event)
}

func toApplicationEvents(models []persistence.Event) []application.Event {
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, application.Event(model))
	}
	return events
}
