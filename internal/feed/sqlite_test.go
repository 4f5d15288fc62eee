package feed

import (
	"testing"
	"time"

	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testThread(id string) *Thread {
	now := time.Now().UTC().Truncate(time.Second)
	return &Thread{
		ID:        id,
		About:     "<#E/table/db.t1>",
		AboutFQN:  "db.t1",
		CreatedBy: "alice",
		CreatedAt: now,
		Posts: []Post{{
			ID:       id + "-p1",
			ThreadID: id,
			From:     "alice",
			Message:  "first post",
			PostedAt: now,
		}},
	}
}

func TestCreateAndGetThread(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	thread := testThread("t1")
	if err := store.CreateThread(ctx, thread); err != nil {
		t.Fatalf("failed to create thread: %v", err)
	}

	got, err := store.GetThread(ctx, "t1")
	if err != nil {
		t.Fatalf("failed to get thread: %v", err)
	}
	if got.About != thread.About {
		t.Errorf("expected about %q, got %q", thread.About, got.About)
	}
	if got.AboutFQN != "db.t1" {
		t.Errorf("expected about_fqn db.t1, got %q", got.AboutFQN)
	}
	if len(got.Posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(got.Posts))
	}
	if got.Posts[0].Message != "first post" {
		t.Errorf("expected first post message, got %q", got.Posts[0].Message)
	}
}

func TestGetThreadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetThread(t.Context(), "missing")
	if err == nil {
		t.Fatal("expected error for missing thread")
	}
	if !cerrors.IsCategory(err, cerrors.CategoryNotFound) {
		t.Errorf("expected not_found category, got %v", err)
	}
}

func TestListThreadsFiltersByFQN(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	t1 := testThread("t1")
	t2 := testThread("t2")
	t2.AboutFQN = "db.t2"
	t2.About = "<#E/table/db.t2>"
	t2.Posts[0].ID = "t2-p1"
	t2.Posts[0].ThreadID = "t2"

	if err := store.CreateThread(ctx, t1); err != nil {
		t.Fatalf("create t1: %v", err)
	}
	if err := store.CreateThread(ctx, t2); err != nil {
		t.Fatalf("create t2: %v", err)
	}

	all, err := store.ListThreads(ctx, "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(all))
	}

	filtered, err := store.ListThreads(ctx, "db.t2", 0)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "t2" {
		t.Fatalf("expected only t2, got %v", filtered)
	}
}

func TestAddPostToMissingThread(t *testing.T) {
	store := newTestStore(t)

	err := store.AddPost(t.Context(), &Post{
		ID:       "p1",
		ThreadID: "missing",
		From:     "bob",
		Message:  "hello",
		PostedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected error for missing thread")
	}
	if !cerrors.IsCategory(err, cerrors.CategoryNotFound) {
		t.Errorf("expected not_found category, got %v", err)
	}
}

func TestMentionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	mentions := []Mention{
		{
			ThreadID:      "t1",
			PostID:        "p1",
			Link:          "<#E/table/db.t1/description>",
			LinkType:      "field",
			EntityType:    "table",
			EntityFQN:     "db.t1",
			FieldType:     "table.description",
			FieldValue:    "db.t1.description",
			FieldValueKey: "db.t1.description",
		},
		{
			ThreadID:      "t1",
			PostID:        "p1",
			Link:          "<#E/table/db.t2/description>",
			LinkType:      "field",
			EntityType:    "table",
			EntityFQN:     "db.t2",
			FieldType:     "table.description",
			FieldValue:    "db.t2.description",
			FieldValueKey: "db.t2.description",
		},
	}
	if err := store.InsertMentions(ctx, mentions); err != nil {
		t.Fatalf("insert mentions: %v", err)
	}

	byValue, err := store.MentionsByFieldValue(ctx, "db.t1.description")
	if err != nil {
		t.Fatalf("query by value: %v", err)
	}
	if len(byValue) != 1 || byValue[0].EntityFQN != "db.t1" {
		t.Fatalf("expected one db.t1 mention, got %v", byValue)
	}

	byType, err := store.MentionsByFieldType(ctx, "table.description")
	if err != nil {
		t.Fatalf("query by type: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("expected 2 mentions by shape, got %d", len(byType))
	}

	if err := store.ClearMentions(ctx); err != nil {
		t.Fatalf("clear mentions: %v", err)
	}
	byType, err = store.MentionsByFieldType(ctx, "table.description")
	if err != nil {
		t.Fatalf("query after clear: %v", err)
	}
	if len(byType) != 0 {
		t.Fatalf("expected no mentions after clear, got %d", len(byType))
	}
}

func TestListPostsAcrossThreads(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	thread := testThread("t1")
	if err := store.CreateThread(ctx, thread); err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if err := store.AddPost(ctx, &Post{
		ID:       "p2",
		ThreadID: "t1",
		From:     "bob",
		Message:  "second",
		PostedAt: thread.CreatedAt.Add(time.Minute),
	}); err != nil {
		t.Fatalf("add post: %v", err)
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Message != "first post" || posts[1].Message != "second" {
		t.Errorf("posts out of order: %v", posts)
	}
}
