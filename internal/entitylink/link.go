// Package entitylink implements the entity link grammar used to address
// catalog entities, their fields, and members of array-valued fields from
// free-form text (feed posts, change descriptions).
//
// The canonical textual form is:
//
//	<#E/{entityType}/{entityFQN}[/{fieldName}[/{arrayFieldName}[/{arrayFieldValue}]]]>
//
// A raw occurrence may carry a fallback display text after a '|', e.g.
// <#E/user/user1|[@User One](https://host/user/user1)>; the fallback text is
// discarded during parsing.
package entitylink

import (
	"errors"
	"fmt"
	"strings"
)

// Grammar delimiters.
const (
	openToken  = "<#E/"
	closeToken = '>'
)

// LinkType classifies what an entity link addresses.
type LinkType string

const (
	// LinkTypeEntity addresses an entity as a whole.
	LinkTypeEntity LinkType = "entity"
	// LinkTypeField addresses a named field of an entity.
	LinkTypeField LinkType = "field"
	// LinkTypeArrayField addresses a member inside an array-valued field,
	// optionally down to a specific value of that member.
	LinkTypeArrayField LinkType = "array_field"
)

// Construction and parse errors.
var (
	// ErrNoLink reports that strict parsing found no well-formed link.
	ErrNoLink = errors.New("no entity link found")
	// ErrMultipleLinks reports that strict parsing found more than one link.
	ErrMultipleLinks = errors.New("multiple entity links found")
	// ErrMissingEntity reports a link without entity type or FQN.
	ErrMissingEntity = errors.New("entity link requires both entity type and entity FQN")
	// ErrSegmentOrder reports an optional segment present without the
	// segment it depends on (array value without array name, array name
	// without field name).
	ErrSegmentOrder = errors.New("entity link segments out of order")
	// ErrSegmentChars reports a segment containing a reserved character.
	ErrSegmentChars = errors.New("entity link segment contains reserved character")
)

// EntityLink is an immutable reference to an entity, a field of an entity, or
// a member of an array-valued field. The zero value is not a valid link;
// construct via New, NewField, NewArrayField, Parse, or ExtractAll.
//
// EntityLink is a comparable value type: two links are equal (==) iff all five
// segments and the derived link type are equal.
type EntityLink struct {
	entityType      string
	entityFQN       string
	fieldName       string
	arrayFieldName  string
	arrayFieldValue string

	linkType   LinkType
	fieldType  string
	fieldValue string
}

// New assembles an EntityLink from its segments. Empty strings mark absent
// optional segments. It returns ErrMissingEntity when entityType or entityFQN
// is empty, ErrSegmentOrder when a dependent segment is present without its
// prerequisite, and ErrSegmentChars when any segment contains '<', '>' or '/'.
func New(entityType, entityFQN, fieldName, arrayFieldName, arrayFieldValue string) (EntityLink, error) {
	if entityType == "" || entityFQN == "" {
		return EntityLink{}, ErrMissingEntity
	}
	if arrayFieldValue != "" && arrayFieldName == "" {
		return EntityLink{}, fmt.Errorf("%w: array field value %q without array field name", ErrSegmentOrder, arrayFieldValue)
	}
	if arrayFieldName != "" && fieldName == "" {
		return EntityLink{}, fmt.Errorf("%w: array field name %q without field name", ErrSegmentOrder, arrayFieldName)
	}
	// '<' and '>' are reserved everywhere. '/' is the segment separator and
	// is allowed only in the final segment (arrayFieldValue), which the
	// positional split lets absorb trailing slashes; anywhere else it would
	// break the round trip between String and Parse.
	for _, seg := range []string{entityType, entityFQN, fieldName, arrayFieldName} {
		if strings.ContainsAny(seg, "<>/") {
			return EntityLink{}, fmt.Errorf("%w: %q", ErrSegmentChars, seg)
		}
	}
	if strings.ContainsAny(arrayFieldValue, "<>") {
		return EntityLink{}, fmt.Errorf("%w: %q", ErrSegmentChars, arrayFieldValue)
	}

	l := EntityLink{
		entityType:      entityType,
		entityFQN:       entityFQN,
		fieldName:       fieldName,
		arrayFieldName:  arrayFieldName,
		arrayFieldValue: arrayFieldValue,
	}
	l.derive()
	return l, nil
}

// NewEntity assembles a link addressing an entity as a whole.
func NewEntity(entityType, entityFQN string) (EntityLink, error) {
	return New(entityType, entityFQN, "", "", "")
}

// NewField assembles a link addressing a named field of an entity.
func NewField(entityType, entityFQN, fieldName string) (EntityLink, error) {
	return New(entityType, entityFQN, fieldName, "", "")
}

// NewArrayField assembles a link addressing a member of an array-valued
// field. arrayFieldValue may be empty to address the member itself.
func NewArrayField(entityType, entityFQN, fieldName, arrayFieldName, arrayFieldValue string) (EntityLink, error) {
	if arrayFieldName == "" {
		return EntityLink{}, fmt.Errorf("%w: array field name required", ErrSegmentOrder)
	}
	return New(entityType, entityFQN, fieldName, arrayFieldName, arrayFieldValue)
}

// derive computes the link type and the two canonical path strings from the
// present segments. Segment presence has already been validated.
func (l *EntityLink) derive() {
	switch {
	case l.arrayFieldValue != "":
		l.linkType = LinkTypeArrayField
		l.fieldType = l.entityType + "." + l.fieldName + ".member"
		l.fieldValue = l.entityFQN + "." + l.arrayFieldName + "." + l.arrayFieldValue
	case l.arrayFieldName != "":
		l.linkType = LinkTypeArrayField
		l.fieldType = l.entityType + "." + l.fieldName + ".member"
		l.fieldValue = l.entityFQN + "." + l.arrayFieldName
	case l.fieldName != "":
		l.linkType = LinkTypeField
		l.fieldType = l.entityType + "." + l.fieldName
		l.fieldValue = l.entityFQN + "." + l.fieldName
	default:
		l.linkType = LinkTypeEntity
		l.fieldType = l.entityType
		l.fieldValue = l.entityFQN
	}
}

// Type returns what the link addresses: entity, field, or array field.
func (l EntityLink) Type() LinkType { return l.linkType }

// EntityType returns the catalog type of the referenced entity.
func (l EntityLink) EntityType() string { return l.entityType }

// EntityFQN returns the fully-qualified name of the referenced entity.
func (l EntityLink) EntityFQN() string { return l.entityFQN }

// FieldName returns the referenced field name, or "" for entity links.
func (l EntityLink) FieldName() string { return l.fieldName }

// ArrayFieldName returns the referenced array member name, or "".
func (l EntityLink) ArrayFieldName() string { return l.arrayFieldName }

// ArrayFieldValue returns the referenced array member value, or "".
func (l EntityLink) ArrayFieldValue() string { return l.arrayFieldValue }

// FieldType returns the canonical shape path of the reference, e.g.
// "table.columns.member". It identifies what kind of thing is referenced and
// is the same for all entities of the same type.
func (l EntityLink) FieldType() string { return l.fieldType }

// FieldValue returns the canonical concrete path of the reference, e.g.
// "db.schema.table.comment.description". It identifies the exact referenced
// path and is the key used for mention indexing.
func (l EntityLink) FieldValue() string { return l.fieldValue }

// IsZero reports whether l is the zero (unconstructed) value.
func (l EntityLink) IsZero() bool { return l.entityType == "" && l.entityFQN == "" }

// String renders the link in its canonical textual form. The link type
// decides how many segments are emitted, so String is the exact inverse of
// Parse for every valid link.
func (l EntityLink) String() string {
	var b strings.Builder
	b.WriteString(openToken)
	b.WriteString(l.entityType)
	b.WriteByte('/')
	b.WriteString(l.entityFQN)
	if l.linkType == LinkTypeField || l.linkType == LinkTypeArrayField {
		b.WriteByte('/')
		b.WriteString(l.fieldName)
	}
	if l.linkType == LinkTypeArrayField {
		b.WriteByte('/')
		b.WriteString(l.arrayFieldName)
		if l.arrayFieldValue != "" {
			b.WriteByte('/')
			b.WriteString(l.arrayFieldValue)
		}
	}
	b.WriteByte(closeToken)
	return b.String()
}
