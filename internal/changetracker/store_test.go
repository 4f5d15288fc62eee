package changetracker

import (
	"bytes"
	"testing"
	"time"
)

func TestStoreAppendAndRetrieve(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	linkKey := "<#E/table/db.orders/description>"
	payload := []byte(`{"field_name": "description"}`)
	metadata := map[string]string{"entity_fqn": "db.orders"}

	err = store.Append(ctx, linkKey, EventFieldUpdated, payload, metadata)
	if err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := store.GetByLink(ctx, linkKey)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.LinkKey() != linkKey {
		t.Errorf("expected link key %s, got %s", linkKey, event.LinkKey())
	}
	if event.Type() != EventFieldUpdated {
		t.Errorf("expected event_type %s, got %s", EventFieldUpdated, event.Type())
	}
	if !bytes.Equal(event.Payload(), payload) {
		t.Errorf("expected payload %s, got %s", payload, event.Payload())
	}
	if event.Metadata()["entity_fqn"] != "db.orders" {
		t.Errorf("expected metadata entity_fqn=db.orders, got %v", event.Metadata())
	}
}

func TestStoreGetByLinkIsolatesKeys(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	if err := store.Append(ctx, "<#E/table/db.a/description>", EventFieldUpdated, []byte(`{}`), nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, "<#E/table/db.b/description>", EventFieldUpdated, []byte(`{}`), nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := store.GetByLink(ctx, "<#E/table/db.a/description>")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event for db.a, got %d", len(events))
	}
}

func TestStoreGetRange(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	if err := store.Append(ctx, "<#E/table/db.a>", EventFieldAdded, []byte(`{}`), nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	now := time.Now()
	events, err := store.GetRange(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event in range, got %d", len(events))
	}

	events, err = store.GetRange(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events outside range, got %d", len(events))
	}
}
