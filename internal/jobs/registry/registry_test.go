package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	called := false
	r.Register("ai_enrich", func(ctx context.Context, orgID, jobID uuid.UUID, payload json.RawMessage) error {
		called = true
		return nil
	})

	h, ok := r.Get("ai_enrich")
	if !ok {
		t.Fatal("expected handler to be registered")
	}
	if err := h(context.Background(), uuid.New(), uuid.New(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestGetUnknownType(t *testing.T) {
	r := New()
	if _, ok := r.Get("does_not_exist"); ok {
		t.Fatal("expected unknown type to be absent")
	}
}

func TestKnown(t *testing.T) {
	r := New()
	if r.Known("schedule_run") {
		t.Fatal("expected unregistered type to be unknown")
	}
	r.Register("schedule_run", func(context.Context, uuid.UUID, uuid.UUID, json.RawMessage) error { return nil })
	if !r.Known("schedule_run") {
		t.Fatal("expected registered type to be known")
	}
}
