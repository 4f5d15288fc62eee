// Package feed stores activity threads and posts whose messages embed entity
// links, and maintains the mention index derived from them.
package feed

import "time"

// Thread is a conversation anchored to an entity (or a field of one) via its
// About link.
type Thread struct {
	ID        string    `json:"id"`
	About     string    `json:"about"`     // canonical entity link string
	AboutFQN  string    `json:"about_fqn"` // entity FQN of the about link, for filtering
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Posts     []Post    `json:"posts,omitempty"`
}

// Post is a single message inside a thread. Message is markdown and may embed
// zero or more entity links.
type Post struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	From     string    `json:"from"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"posted_at"`
}

// Mention is one extracted entity link occurrence, indexed by the link's
// canonical paths. FieldValueKey is the NFC-normalized FieldValue used for
// exact lookups.
type Mention struct {
	ThreadID      string `json:"thread_id"`
	PostID        string `json:"post_id"`
	Link          string `json:"link"`
	LinkType      string `json:"link_type"`
	EntityType    string `json:"entity_type"`
	EntityFQN     string `json:"entity_fqn"`
	FieldType     string `json:"field_type"`
	FieldValue    string `json:"field_value"`
	FieldValueKey string `json:"-"`
}
