package changetracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/catlink/internal/entitylink"
	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/logfields"
)

// changePayload is the stored form of one field change event.
type changePayload struct {
	FieldName       string  `json:"field_name"`
	OldValue        any     `json:"old_value,omitempty"`
	NewValue        any     `json:"new_value,omitempty"`
	PreviousVersion float64 `json:"previous_version"`
	Version         float64 `json:"version"`
	UpdatedBy       string  `json:"updated_by,omitempty"`
}

// Recorder turns entity updates into change events. Each changed field is
// addressed by an entity link assembled from the field's dotted name, and the
// rendered link is the event's stable key.
type Recorder struct {
	store Store
	log   *ChangeLog
	now   func() time.Time
}

// NewRecorder creates a recorder writing to the given store. log may be nil
// when no live projection needs updating.
func NewRecorder(store Store, log *ChangeLog) *Recorder {
	return &Recorder{store: store, log: log, now: time.Now}
}

// RecordChange appends one event per changed field in the description. The
// entity update is already durable by the time this runs; a failed append is
// returned so callers can surface it, but earlier appends are not rolled back.
func (r *Recorder) RecordChange(ctx context.Context, entityType, entityFQN string, desc ChangeDescription, updatedBy string) error {
	groups := []struct {
		eventType string
		changes   []FieldChange
	}{
		{EventFieldAdded, desc.FieldsAdded},
		{EventFieldUpdated, desc.FieldsUpdated},
		{EventFieldDeleted, desc.FieldsDeleted},
	}

	for _, g := range groups {
		for _, change := range g.changes {
			if err := r.recordOne(ctx, entityType, entityFQN, g.eventType, change, desc, updatedBy); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Recorder) recordOne(ctx context.Context, entityType, entityFQN, eventType string, change FieldChange, desc ChangeDescription, updatedBy string) error {
	link, err := LinkForField(entityType, entityFQN, change.Name)
	if err != nil {
		return cerrors.WrapError(err, cerrors.CategoryValidation, "cannot address changed field "+change.Name).
			WithContext("entity_fqn", entityFQN).
			Build()
	}

	payload, err := json.Marshal(changePayload{
		FieldName:       change.Name,
		OldValue:        change.OldValue,
		NewValue:        change.NewValue,
		PreviousVersion: desc.PreviousVersion,
		Version:         desc.Version,
		UpdatedBy:       updatedBy,
	})
	if err != nil {
		return cerrors.WrapError(err, cerrors.CategoryStorage, "marshal change payload").Build()
	}

	metadata := map[string]string{
		"entity_type": entityType,
		"entity_fqn":  entityFQN,
		"field_type":  link.FieldType(),
	}

	key := link.String()
	if err := r.store.Append(ctx, key, eventType, payload, metadata); err != nil {
		return err
	}
	if r.log != nil {
		r.log.Apply(&BaseEvent{
			EventLinkKey:   key,
			EventType:      eventType,
			EventTimestamp: r.now(),
			EventPayload:   payload,
			EventMetadata:  metadata,
		})
	}

	slog.Debug("Recorded field change",
		logfields.EntityFQN(entityFQN),
		logfields.FieldValue(link.FieldValue()),
		"event_type", eventType)
	return nil
}

// LinkForField assembles the entity link addressing a changed field. Field
// names are dotted paths: "" addresses the entity itself, "description" a top
// level field, and "columns.amount" the amount member of the columns array.
// Deeper paths keep their tail inside the member segment, which may itself
// contain dots but never slashes.
func LinkForField(entityType, entityFQN, fieldName string) (entitylink.EntityLink, error) {
	if fieldName == "" {
		return entitylink.NewEntity(entityType, entityFQN)
	}
	parts := strings.SplitN(fieldName, ".", 2)
	if len(parts) == 1 {
		return entitylink.NewField(entityType, entityFQN, parts[0])
	}
	return entitylink.NewArrayField(entityType, entityFQN, parts[0], parts[1], "")
}
