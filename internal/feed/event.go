package feed

import "time"

// MentionEvent is published for every entity link extracted from a stored
// post. Downstream consumers resolve the referenced entity and notify owners
// or update derived views.
type MentionEvent struct {
	ThreadID string `json:"thread_id"`
	PostID   string `json:"post_id"`
	From     string `json:"from"`

	// Link information
	Link       string `json:"link"` // canonical entity link string
	LinkType   string `json:"link_type"`
	EntityType string `json:"entity_type"`
	EntityFQN  string `json:"entity_fqn"`
	FieldType  string `json:"field_type"`
	FieldValue string `json:"field_value"`

	Timestamp time.Time `json:"timestamp"`
}

// NewMentionEvent builds the event for one indexed mention.
func NewMentionEvent(m Mention, from string, at time.Time) *MentionEvent {
	return &MentionEvent{
		ThreadID:   m.ThreadID,
		PostID:     m.PostID,
		From:       from,
		Link:       m.Link,
		LinkType:   m.LinkType,
		EntityType: m.EntityType,
		EntityFQN:  m.EntityFQN,
		FieldType:  m.FieldType,
		FieldValue: m.FieldValue,
		Timestamp:  at,
	}
}
