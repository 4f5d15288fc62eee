// Package changetracker records field-level entity changes as an append-only
// event log keyed by rendered entity links.
package changetracker

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// ChangeRecord is a read model row for one recorded field change.
type ChangeRecord struct {
	Link            string    `json:"link"`
	EntityType      string    `json:"entity_type"`
	EntityFQN       string    `json:"entity_fqn"`
	FieldType       string    `json:"field_type"`
	EventType       string    `json:"event_type"`
	FieldName       string    `json:"field_name"`
	OldValue        any       `json:"old_value,omitempty"`
	NewValue        any       `json:"new_value,omitempty"`
	PreviousVersion float64   `json:"previous_version"`
	Version         float64   `json:"version"`
	UpdatedBy       string    `json:"updated_by,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ChangeLog maintains an in-memory view of recorded changes, reconstructed
// from events in the change event store. Queries run against the view, not
// the store.
type ChangeLog struct {
	mu       sync.RWMutex
	store    Store
	byLink   map[string][]ChangeRecord // rendered link -> records, oldest first
	byShape  map[string][]ChangeRecord // field type -> records, oldest first
	lastSync time.Time
}

// NewChangeLog creates a projection backed by the given store.
func NewChangeLog(store Store) *ChangeLog {
	return &ChangeLog{
		store:   store,
		byLink:  make(map[string][]ChangeRecord),
		byShape: make(map[string][]ChangeRecord),
	}
}

// Rebuild reconstructs the projection from all events in the store.
// This is typically called at startup.
func (l *ChangeLog) Rebuild(ctx context.Context) error {
	events, err := l.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.byLink = make(map[string][]ChangeRecord)
	l.byShape = make(map[string][]ChangeRecord)
	for _, event := range events {
		l.applyEventLocked(event)
	}

	l.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
// This is used for real-time updates when events are recorded.
func (l *ChangeLog) Apply(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyEventLocked(event)
}

func (l *ChangeLog) applyEventLocked(event Event) {
	key := event.LinkKey()
	if key == "" {
		return
	}

	var payload changePayload
	if err := json.Unmarshal(event.Payload(), &payload); err != nil {
		return
	}

	meta := event.Metadata()
	record := ChangeRecord{
		Link:            key,
		EntityType:      meta["entity_type"],
		EntityFQN:       meta["entity_fqn"],
		FieldType:       meta["field_type"],
		EventType:       event.Type(),
		FieldName:       payload.FieldName,
		OldValue:        payload.OldValue,
		NewValue:        payload.NewValue,
		PreviousVersion: payload.PreviousVersion,
		Version:         payload.Version,
		UpdatedBy:       payload.UpdatedBy,
		Timestamp:       event.Timestamp(),
	}

	l.byLink[key] = append(l.byLink[key], record)
	if record.FieldType != "" {
		l.byShape[record.FieldType] = append(l.byShape[record.FieldType], record)
	}
}

// ChangesFor returns the change history of the exact path a rendered link
// addresses, oldest first.
func (l *ChangeLog) ChangesFor(linkKey string) []ChangeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := l.byLink[linkKey]
	result := make([]ChangeRecord, len(records))
	copy(result, records)
	return result
}

// ChangesOfShape returns every recorded change matching a reference shape,
// e.g. all description changes across tables.
func (l *ChangeLog) ChangesOfShape(fieldType string) []ChangeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := l.byShape[fieldType]
	result := make([]ChangeRecord, len(records))
	copy(result, records)
	return result
}

// LastSyncTime returns when the projection was last rebuilt from the store.
func (l *ChangeLog) LastSyncTime() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSync
}
