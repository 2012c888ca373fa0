package application

import (
	"context"
	"errors"
	"testing"
)

var (
	adminPrincipal  = Principal{UserID: "admin-1", Email: "root@example.com", IsAdmin: true}
	memberPrincipal = Principal{UserID: "user-1", Email: "alice@example.com"}
)

func concertEvent() Event {
	return Event{
		ID:          "evt-concert",
		Name:        "Spring Concert",
		Date:        "2024-04-12",
		Place:       "Main Hall",
		Image:       "concert.png",
		Price:       "20",
		Description: "Strings and brass",
	}
}

func stringPtr(v string) *string { return &v }

func TestEventService_Reads(t *testing.T) {
	t.Parallel()

	early := concertEvent()
	early.ID, early.Date = "evt-early", "2024-01-01"
	service := NewEventService(newEventStoreStub(concertEvent(), early), nil, nil)

	events, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 2 || events[0].ID != "evt-early" {
		t.Fatalf("expected date ordering, got %#v", events)
	}

	event, err := service.Get(context.Background(), " evt-concert ")
	if err != nil || event.Name != "Spring Concert" {
		t.Fatalf("Get returned %#v, %v", event, err)
	}
	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.Get(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestEventService_Create(t *testing.T) {
	t.Parallel()

	input := EventInput{Name: " Spring Concert ", Date: "2024-04-12", Place: "Main Hall", Image: "concert.png"}

	t.Run("admin creates", func(t *testing.T) {
		t.Parallel()

		store := newEventStoreStub()
		service := NewEventService(store, sequentialIDs("evt-1"), nil)

		event, err := service.Create(context.Background(), adminPrincipal, input)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if event.ID != "evt-1" || event.Name != "Spring Concert" || event.Price != "" {
			t.Fatalf("unexpected event: %#v", event)
		}
		if _, err := store.GetEvent(context.Background(), "evt-1"); err != nil {
			t.Fatalf("event not stored: %v", err)
		}
	})

	t.Run("non-admin is forbidden and nothing is stored", func(t *testing.T) {
		t.Parallel()

		store := newEventStoreStub()
		service := NewEventService(store, sequentialIDs("evt-1"), nil)

		if _, err := service.Create(context.Background(), memberPrincipal, input); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := service.Create(context.Background(), Principal{}, input); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("expected ErrMissingCredential, got %v", err)
		}
		if events, _ := store.ListEvents(context.Background()); len(events) != 0 {
			t.Fatalf("expected no events, got %#v", events)
		}
	})

	t.Run("validates required fields", func(t *testing.T) {
		t.Parallel()

		service := NewEventService(newEventStoreStub(), nil, nil)
		_, err := service.Create(context.Background(), adminPrincipal, EventInput{Name: "x", Price: "10"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"date", "place", "image"} {
			if vErr.FieldErrors[field] == "" {
				t.Fatalf("expected %s to be reported, got %#v", field, vErr.FieldErrors)
			}
		}
		if _, ok := vErr.FieldErrors["name"]; ok {
			t.Fatalf("name was provided")
		}
	})
}

func TestEventService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		t.Parallel()

		service := NewEventService(newEventStoreStub(concertEvent()), nil, nil)
		event, err := service.Update(context.Background(), adminPrincipal, "evt-concert", EventPatch{Price: stringPtr("25")})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if event.Price != "25" || event.Name != "Spring Concert" {
			t.Fatalf("unexpected event after update: %#v", event)
		}
	})

	t.Run("rejects empty and blanking patches", func(t *testing.T) {
		t.Parallel()

		service := NewEventService(newEventStoreStub(concertEvent()), nil, nil)

		var vErr *ValidationError
		_, err := service.Update(context.Background(), adminPrincipal, "evt-concert", EventPatch{})
		if !errors.As(err, &vErr) || vErr.FieldErrors["event"] == "" {
			t.Fatalf("expected empty patch to be rejected, got %v", err)
		}
		_, err = service.Update(context.Background(), adminPrincipal, "evt-concert", EventPatch{Name: stringPtr("  ")})
		if !errors.As(err, &vErr) || vErr.FieldErrors["name"] == "" {
			t.Fatalf("expected blank name to be rejected, got %v", err)
		}
	})

	t.Run("authorization and missing events", func(t *testing.T) {
		t.Parallel()

		store := newEventStoreStub(concertEvent())
		service := NewEventService(store, nil, nil)
		patch := EventPatch{Name: stringPtr("Renamed")}

		if _, err := service.Update(context.Background(), memberPrincipal, "evt-concert", patch); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err := service.Delete(context.Background(), memberPrincipal, "evt-concert"); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := service.Update(context.Background(), adminPrincipal, "missing", patch); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		if err := service.Delete(context.Background(), adminPrincipal, "evt-concert"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := service.Delete(context.Background(), adminPrincipal, "evt-concert"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestEventService_Seed(t *testing.T) {
	t.Parallel()

	store := newEventStoreStub()
	service := NewEventService(store, nil, nil)

	invalid := concertEvent()
	invalid.ID, invalid.Image = "evt-invalid", ""
	anonymous := concertEvent()
	anonymous.ID = ""
	second := concertEvent()
	second.ID, second.Name = "evt-second", "Autumn Fair"

	inserted, err := service.Seed(context.Background(), []Event{concertEvent(), invalid, anonymous, second})
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", inserted)
	}

	// Seeding again leaves existing rows alone.
	renamed := concertEvent()
	renamed.Name = "Should not overwrite"
	inserted, err = service.Seed(context.Background(), []Event{renamed})
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected no inserts, got %d", inserted)
	}
	event, _ := store.GetEvent(context.Background(), "evt-concert")
	if event.Name != "Spring Concert" {
		t.Fatalf("seed overwrote an existing event: %#v", event)
	}
}
