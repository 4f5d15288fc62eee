package entitylink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_EntityLinkDerivation(t *testing.T) {
	l, err := NewEntity("table", "db.schema.orders")
	require.NoError(t, err)
	require.Equal(t, LinkTypeEntity, l.Type())
	require.Equal(t, "table", l.FieldType())
	require.Equal(t, "db.schema.orders", l.FieldValue())
	require.Equal(t, "<#E/table/db.schema.orders>", l.String())
}

func TestNew_FieldLinkDerivation(t *testing.T) {
	l, err := NewField("table", "db.schema.orders", "description")
	require.NoError(t, err)
	require.Equal(t, LinkTypeField, l.Type())
	require.Equal(t, "table.description", l.FieldType())
	require.Equal(t, "db.schema.orders.description", l.FieldValue())
	require.Equal(t, "<#E/table/db.schema.orders/description>", l.String())
}

func TestNew_ArrayFieldLinkWithoutValue(t *testing.T) {
	l, err := NewArrayField("table", "db.schema.orders", "columns", "amount", "")
	require.NoError(t, err)
	require.Equal(t, LinkTypeArrayField, l.Type())
	require.Equal(t, "table.columns.member", l.FieldType())
	require.Equal(t, "db.schema.orders.amount", l.FieldValue())
	require.Equal(t, "<#E/table/db.schema.orders/columns/amount>", l.String())
}

func TestNew_ArrayFieldLinkWithValue(t *testing.T) {
	l, err := NewArrayField("table", "db.schema.orders", "columns", "amount", "description")
	require.NoError(t, err)
	require.Equal(t, LinkTypeArrayField, l.Type())
	require.Equal(t, "table.columns.member", l.FieldType())
	require.Equal(t, "db.schema.orders.amount.description", l.FieldValue())
	require.Equal(t, "<#E/table/db.schema.orders/columns/amount/description>", l.String())
}

func TestNew_RequiresEntityTypeAndFQN(t *testing.T) {
	_, err := New("", "db.t1", "", "", "")
	require.ErrorIs(t, err, ErrMissingEntity)

	_, err = New("table", "", "", "", "")
	require.ErrorIs(t, err, ErrMissingEntity)
}

func TestNew_SegmentOrderInvariants(t *testing.T) {
	// Array field value without array field name.
	_, err := New("table", "db.t1", "columns", "", "description")
	require.ErrorIs(t, err, ErrSegmentOrder)

	// Array field name without field name.
	_, err = New("table", "db.t1", "", "comment", "")
	require.ErrorIs(t, err, ErrSegmentOrder)
}

func TestNew_RejectsReservedCharacters(t *testing.T) {
	for _, tc := range []struct{ typ, fqn string }{
		{"ta<ble", "db.t1"},
		{"table", "db>t1"},
		{"ta/ble", "db.t1"},
		{"table", "db/t1"},
	} {
		_, err := New(tc.typ, tc.fqn, "", "", "")
		require.ErrorIs(t, err, ErrSegmentChars, "type=%q fqn=%q", tc.typ, tc.fqn)
	}

	_, err := New("table", "db.t1", "colu/mns", "", "")
	require.ErrorIs(t, err, ErrSegmentChars)

	// Trailing array field value is the only segment allowed to carry '/'.
	l, err := New("table", "db.t1", "columns", "comment", "a/b")
	require.NoError(t, err)
	require.Equal(t, "<#E/table/db.t1/columns/comment/a/b>", l.String())
}

func TestEntityLink_ValueEquality(t *testing.T) {
	a, err := NewField("table", "db.t1", "description")
	require.NoError(t, err)
	b, err := NewField("table", "db.t1", "description")
	require.NoError(t, err)
	c, err := NewField("table", "db.t2", "description")
	require.NoError(t, err)

	require.True(t, a == b)
	require.False(t, a == c)

	// Comparable value type: usable as a map key.
	seen := map[EntityLink]int{a: 1}
	require.Equal(t, 1, seen[b])
}

func TestEntityLink_IsZero(t *testing.T) {
	require.True(t, EntityLink{}.IsZero())

	l, err := NewEntity("table", "db.t1")
	require.NoError(t, err)
	require.False(t, l.IsZero())
}
