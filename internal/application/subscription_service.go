package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SubscriptionStore persists user subscriptions to events.
type SubscriptionStore interface {
	// AddSubscription reports whether a new subscription was stored. A
	// missing event is reported as ErrNotFound.
	AddSubscription(ctx context.Context, userID, eventID string, at time.Time) (bool, error)
	RemoveSubscription(ctx context.Context, userID, eventID string) error
	HasSubscription(ctx context.Context, userID, eventID string) (bool, error)
	ListSubscribedEvents(ctx context.Context, userID string) ([]Event, error)
}

// SubscriptionService lets any authenticated user follow events.
type SubscriptionService struct {
	subscriptions SubscriptionStore
	events        EventStore
	now           func() time.Time
	logger        *slog.Logger
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(subscriptions SubscriptionStore, events EventStore, now func() time.Time, logger *slog.Logger) *SubscriptionService {
	if now == nil {
		now = time.Now
	}
	return &SubscriptionService{
		subscriptions: subscriptions,
		events:        events,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *SubscriptionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SubscriptionService", operation, attrs...)
}

// Subscribe adds the caller to the event. It reports false when the caller
// was already subscribed.
func (s *SubscriptionService) Subscribe(ctx context.Context, principal Principal, eventID string) (created bool, err error) {
	if s == nil || s.subscriptions == nil || s.events == nil {
		err = fmt.Errorf("subscription store not configured")
		return
	}

	eventID = strings.TrimSpace(eventID)
	logger := s.loggerWith(ctx, "Subscribe", "principal_id", principal.UserID, "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "subscribe failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "subscribed", "created", created)
	}()

	if err = requirePrincipal(principal); err != nil {
		return
	}
	if err = requireEventID(eventID); err != nil {
		return
	}

	if _, err = s.events.GetEvent(ctx, eventID); err != nil {
		return
	}

	created, err = s.subscriptions.AddSubscription(ctx, principal.UserID, eventID, s.now().UTC())
	return
}

// Unsubscribe removes the caller from the event, or returns ErrNotFound when
// no subscription exists.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, principal Principal, eventID string) (err error) {
	if s == nil || s.subscriptions == nil {
		return fmt.Errorf("subscription store not configured")
	}

	eventID = strings.TrimSpace(eventID)
	logger := s.loggerWith(ctx, "Unsubscribe", "principal_id", principal.UserID, "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "unsubscribe failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "unsubscribed")
	}()

	if err = requirePrincipal(principal); err != nil {
		return
	}
	if err = requireEventID(eventID); err != nil {
		return
	}
	return s.subscriptions.RemoveSubscription(ctx, principal.UserID, eventID)
}

// IsSubscribed reports whether the caller follows the event.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, principal Principal, eventID string) (bool, error) {
	if s == nil || s.subscriptions == nil {
		return false, fmt.Errorf("subscription store not configured")
	}
	if err := requirePrincipal(principal); err != nil {
		return false, err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, nil
	}
	return s.subscriptions.HasSubscription(ctx, principal.UserID, eventID)
}

// ListForUser returns the caller's subscribed events ordered by date.
func (s *SubscriptionService) ListForUser(ctx context.Context, principal Principal) ([]Event, error) {
	if s == nil || s.subscriptions == nil {
		return nil, fmt.Errorf("subscription store not configured")
	}
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	events, err := s.subscriptions.ListSubscribedEvents(ctx, principal.UserID)
	if err != nil {
		s.loggerWith(ctx, "ListForUser", "principal_id", principal.UserID).
			ErrorContext(ctx, "failed to list subscriptions", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return events, nil
}

func requirePrincipal(principal Principal) error {
	if principal.UserID == "" {
		return ErrMissingCredential
	}
	return nil
}

func requireEventID(eventID string) error {
	if eventID == "" {
		vErr := &ValidationError{}
		vErr.add("event_id", "event_id is required")
		return vErr
	}
	return nil
}
