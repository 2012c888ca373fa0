package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json handler honours level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New(&buf, "warn", "json")
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}

		logger.Info("dropped")
		logger.Warn("kept", "key", "value")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "kept" || entry["key"] != "value" {
			t.Fatalf("unexpected entry: %v", entry)
		}
	})

	t.Run("rejects unknown settings", func(t *testing.T) {
		t.Parallel()

		if _, err := New(&bytes.Buffer{}, "loud", "json"); err == nil {
			t.Fatal("expected error for unknown level")
		}
		if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Fatal("expected error for unknown format")
		}
	})
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Fatal("expected the stored logger back")
	}
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil logger for a bare context")
	}
	if ContextWithLogger(ctx, nil) != ctx {
		t.Fatal("a nil logger should leave the context unchanged")
	}
}
