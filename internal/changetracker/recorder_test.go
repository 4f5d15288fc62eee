package changetracker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinkForField(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		want      string
	}{
		{"entity itself", "", "<#E/table/db.orders>"},
		{"top level field", "description", "<#E/table/db.orders/description>"},
		{"array member", "columns.amount", "<#E/table/db.orders/columns/amount>"},
		{"deep member path", "columns.amount.description", "<#E/table/db.orders/columns/amount.description>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := LinkForField("table", "db.orders", tt.fieldName)
			require.NoError(t, err)
			require.Equal(t, tt.want, link.String())
		})
	}
}

func TestRecordChangeAppendsPerField(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	log := NewChangeLog(store)
	recorder := NewRecorder(store, log)
	ctx := t.Context()

	desc := ChangeDescription{
		FieldsUpdated: []FieldChange{
			{Name: "description", OldValue: "old", NewValue: "new"},
			{Name: "columns.amount", OldValue: "int", NewValue: "bigint"},
		},
		FieldsDeleted:   []FieldChange{{Name: "tags", OldValue: []string{"pii"}}},
		PreviousVersion: 0.1,
		Version:         0.2,
	}
	require.NoError(t, recorder.RecordChange(ctx, "table", "db.orders", desc, "alice"))

	events, err := store.GetByLink(ctx, "<#E/table/db.orders/description>")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventFieldUpdated, events[0].Type())
	require.Equal(t, "table.description", events[0].Metadata()["field_type"])

	events, err = store.GetByLink(ctx, "<#E/table/db.orders/tags>")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventFieldDeleted, events[0].Type())

	// live projection was updated alongside the store
	records := log.ChangesFor("<#E/table/db.orders/columns/amount>")
	require.Len(t, records, 1)
	require.Equal(t, "bigint", records[0].NewValue)
	require.Equal(t, 0.2, records[0].Version)
}
