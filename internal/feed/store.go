package feed

import "context"

// Store defines the interface for persisting threads, posts, and the mention
// index derived from their messages.
type Store interface {
	// CreateThread persists a new thread and its initial posts.
	CreateThread(ctx context.Context, thread *Thread) error

	// GetThread retrieves a thread with its posts, newest post last.
	GetThread(ctx context.Context, id string) (*Thread, error)

	// ListThreads retrieves threads, newest first, optionally filtered to
	// those about the given entity FQN (or a field of it). limit <= 0 means
	// no limit.
	ListThreads(ctx context.Context, aboutFQN string, limit int) ([]*Thread, error)

	// AddPost appends a post to an existing thread.
	AddPost(ctx context.Context, post *Post) error

	// ListPosts retrieves all posts across threads, oldest first. Used by
	// the mention reindexer.
	ListPosts(ctx context.Context) ([]Post, error)

	// InsertMentions adds mention rows for a post.
	InsertMentions(ctx context.Context, mentions []Mention) error

	// MentionsByFieldValue retrieves mentions whose normalized field value
	// key matches exactly.
	MentionsByFieldValue(ctx context.Context, fieldValueKey string) ([]Mention, error)

	// MentionsByFieldType retrieves mentions grouped by reference shape,
	// e.g. all references to "table.columns.member".
	MentionsByFieldType(ctx context.Context, fieldType string) ([]Mention, error)

	// ClearMentions removes all mention rows; the reindexer rebuilds them
	// from stored posts.
	ClearMentions(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
