package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// EventStore persists events. Missing events are reported as ErrNotFound.
type EventStore interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	InsertEventIfAbsent(ctx context.Context, event Event) (bool, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// EventService manages the event catalogue. Reads are public; every
// mutation requires an admin principal.
type EventService struct {
	events      EventStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewEventService constructs an EventService with the provided dependencies.
func NewEventService(events EventStore, idGenerator func() string, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &EventService{
		events:      events,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// List returns all events ordered by date.
func (s *EventService) List(ctx context.Context) ([]Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event store not configured")
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		s.loggerWith(ctx, "List").ErrorContext(ctx, "failed to list events", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return events, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrNotFound
	}
	return s.events.GetEvent(ctx, id)
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, principal Principal, input EventInput) (event Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}

	input = normalizeEventInput(input)
	if vErr := validateEventInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	event, err = s.events.CreateEvent(ctx, Event{
		ID:          s.idGenerator(),
		Name:        input.Name,
		Date:        input.Date,
		Place:       input.Place,
		Image:       input.Image,
		Price:       input.Price,
		Description: input.Description,
	})
	return
}

// Update applies a partial change to an event.
func (s *EventService) Update(ctx context.Context, principal Principal, id string, patch EventPatch) (event Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "Update", "principal_id", principal.UserID, "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if id == "" {
		err = ErrNotFound
		return
	}

	patch = normalizeEventPatch(patch)
	if vErr := validateEventPatch(patch); vErr.HasErrors() {
		err = vErr
		return
	}

	event, err = s.events.UpdateEvent(ctx, id, patch)
	return
}

// Delete removes an event and its subscriptions.
func (s *EventService) Delete(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil || s.events == nil {
		return fmt.Errorf("event store not configured")
	}

	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.UserID, "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event deleted")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if id == "" {
		return ErrNotFound
	}
	return s.events.DeleteEvent(ctx, id)
}

// Seed inserts events that do not exist yet, keyed by ID, and returns how
// many were added. Events without an ID or missing required fields are
// skipped.
func (s *EventService) Seed(ctx context.Context, events []Event) (inserted int, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Seed", "candidates", len(events))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event seeding failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "events seeded", "inserted", inserted)
	}()

	for _, event := range events {
		event.ID = strings.TrimSpace(event.ID)
		input := normalizeEventInput(EventInput{
			Name:        event.Name,
			Date:        event.Date,
			Place:       event.Place,
			Image:       event.Image,
			Price:       event.Price,
			Description: event.Description,
		})
		if event.ID == "" || validateEventInput(input).HasErrors() {
			logger.WarnContext(ctx, "skipping invalid seed event", "event_id", event.ID)
			continue
		}

		var added bool
		added, err = s.events.InsertEventIfAbsent(ctx, Event{
			ID:          event.ID,
			Name:        input.Name,
			Date:        input.Date,
			Place:       input.Place,
			Image:       input.Image,
			Price:       input.Price,
			Description: input.Description,
		})
		if err != nil {
			return
		}
		if added {
			inserted++
		}
	}
	return
}

func requireAdmin(principal Principal) error {
	if principal.UserID == "" {
		return ErrMissingCredential
	}
	if !principal.IsAdmin {
		return ErrForbidden
	}
	return nil
}

func normalizeEventInput(input EventInput) EventInput {
	return EventInput{
		Name:        strings.TrimSpace(input.Name),
		Date:        strings.TrimSpace(input.Date),
		Place:       strings.TrimSpace(input.Place),
		Image:       strings.TrimSpace(input.Image),
		Price:       strings.TrimSpace(input.Price),
		Description: strings.TrimSpace(input.Description),
	}
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}
	for _, r := range []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"date", input.Date},
		{"place", input.Place},
		{"image", input.Image},
	} {
		if r.value == "" {
			vErr.add(r.field, r.field+" is required")
		}
	}
	return vErr
}

func normalizeEventPatch(patch EventPatch) EventPatch {
	trim := func(value *string) *string {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		return &trimmed
	}
	return EventPatch{
		Name:        trim(patch.Name),
		Date:        trim(patch.Date),
		Place:       trim(patch.Place),
		Image:       trim(patch.Image),
		Price:       trim(patch.Price),
		Description: trim(patch.Description),
	}
}

func validateEventPatch(patch EventPatch) *ValidationError {
	vErr := &ValidationError{}
	if patch.IsEmpty() {
		vErr.add("event", "nothing to update")
		return vErr
	}
	for _, r := range []struct {
		field string
		value *string
	}{
		{"name", patch.Name},
		{"date", patch.Date},
		{"place", patch.Place},
		{"image", patch.Image},
	} {
		if r.value != nil && *r.value == "" {
			vErr.add(r.field, r.field+" must not be empty")
		}
	}
	return vErr
}
