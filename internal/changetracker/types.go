package changetracker

// FieldChange describes one field of an entity changing value.
type FieldChange struct {
	Name     string `json:"name"`
	OldValue any    `json:"old_value,omitempty"`
	NewValue any    `json:"new_value,omitempty"`
}

// ChangeDescription groups the field changes of one entity update, together
// with the version transition the update produced.
type ChangeDescription struct {
	FieldsAdded     []FieldChange `json:"fields_added,omitempty"`
	FieldsUpdated   []FieldChange `json:"fields_updated,omitempty"`
	FieldsDeleted   []FieldChange `json:"fields_deleted,omitempty"`
	PreviousVersion float64       `json:"previous_version"`
	Version         float64       `json:"version"`
}

// Event types recorded per field change.
const (
	EventFieldAdded   = "FieldAdded"
	EventFieldUpdated = "FieldUpdated"
	EventFieldDeleted = "FieldDeleted"
)
