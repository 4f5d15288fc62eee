package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based feed store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS threads (
		id TEXT PRIMARY KEY,
		about TEXT NOT NULL,
		about_fqn TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL REFERENCES threads(id),
		from_user TEXT NOT NULL,
		message TEXT NOT NULL,
		posted_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS mentions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		link TEXT NOT NULL,
		link_type TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_fqn TEXT NOT NULL,
		field_type TEXT NOT NULL,
		field_value TEXT NOT NULL,
		field_value_key TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_threads_about_fqn ON threads(about_fqn);
	CREATE INDEX IF NOT EXISTS idx_posts_thread_id ON posts(thread_id);
	CREATE INDEX IF NOT EXISTS idx_mentions_field_value_key ON mentions(field_value_key);
	CREATE INDEX IF NOT EXISTS idx_mentions_field_type ON mentions(field_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateThread persists a new thread and its initial posts.
func (s *SQLiteStore) CreateThread(ctx context.Context, thread *Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.StorageError("begin transaction", err).Build()
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO threads (id, about, about_fqn, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		thread.ID, thread.About, thread.AboutFQN, thread.CreatedBy, thread.CreatedAt.Unix(),
	)
	if err != nil {
		return cerrors.StorageError("insert thread", err).Build()
	}

	for i := range thread.Posts {
		p := &thread.Posts[i]
		_, err = tx.ExecContext(ctx,
			"INSERT INTO posts (id, thread_id, from_user, message, posted_at) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.ThreadID, p.From, p.Message, p.PostedAt.Unix(),
		)
		if err != nil {
			return cerrors.StorageError("insert post", err).Build()
		}
	}

	if err := tx.Commit(); err != nil {
		return cerrors.StorageError("commit thread", err).Build()
	}
	return nil
}

// GetThread retrieves a thread with its posts.
func (s *SQLiteStore) GetThread(ctx context.Context, id string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, about, about_fqn, created_by, created_at FROM threads WHERE id = ?", id)

	thread, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cerrors.NotFoundError("thread not found").WithContext("thread_id", id).Build()
	}
	if err != nil {
		return nil, cerrors.StorageError("query thread", err).Build()
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, thread_id, from_user, message, posted_at FROM posts WHERE thread_id = ? ORDER BY posted_at, id", id)
	if err != nil {
		return nil, cerrors.StorageError("query posts", err).Build()
	}
	defer rows.Close()

	thread.Posts, err = scanPosts(rows)
	if err != nil {
		return nil, cerrors.StorageError("scan posts", err).Build()
	}
	return thread, nil
}

// ListThreads retrieves threads, newest first.
func (s *SQLiteStore) ListThreads(ctx context.Context, aboutFQN string, limit int) ([]*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, about, about_fqn, created_by, created_at FROM threads"
	args := []any{}
	if aboutFQN != "" {
		query += " WHERE about_fqn = ?"
		args = append(args, aboutFQN)
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cerrors.StorageError("query threads", err).Build()
	}
	defer rows.Close()

	var threads []*Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, cerrors.StorageError("scan thread", err).Build()
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.StorageError("iterate threads", err).Build()
	}
	return threads, nil
}

// AddPost appends a post to an existing thread.
func (s *SQLiteStore) AddPost(ctx context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM threads WHERE id = ?", post.ThreadID).Scan(&exists)
	if err != nil {
		return cerrors.StorageError("query thread", err).Build()
	}
	if exists == 0 {
		return cerrors.NotFoundError("thread not found").WithContext("thread_id", post.ThreadID).Build()
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO posts (id, thread_id, from_user, message, posted_at) VALUES (?, ?, ?, ?, ?)",
		post.ID, post.ThreadID, post.From, post.Message, post.PostedAt.Unix(),
	)
	if err != nil {
		return cerrors.StorageError("insert post", err).Build()
	}
	return nil
}

// ListPosts retrieves all posts across threads, oldest first.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, thread_id, from_user, message, posted_at FROM posts ORDER BY posted_at, id")
	if err != nil {
		return nil, cerrors.StorageError("query posts", err).Build()
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, cerrors.StorageError("scan posts", err).Build()
	}
	return posts, nil
}

// InsertMentions adds mention rows for a post.
func (s *SQLiteStore) InsertMentions(ctx context.Context, mentions []Mention) error {
	if len(mentions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.StorageError("begin transaction", err).Build()
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range mentions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO mentions (thread_id, post_id, link, link_type, entity_type, entity_fqn, field_type, field_value, field_value_key)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ThreadID, m.PostID, m.Link, m.LinkType, m.EntityType, m.EntityFQN, m.FieldType, m.FieldValue, m.FieldValueKey,
		)
		if err != nil {
			return cerrors.StorageError("insert mention", err).Build()
		}
	}

	if err := tx.Commit(); err != nil {
		return cerrors.StorageError("commit mentions", err).Build()
	}
	return nil
}

// MentionsByFieldValue retrieves mentions by normalized field value key.
func (s *SQLiteStore) MentionsByFieldValue(ctx context.Context, fieldValueKey string) ([]Mention, error) {
	return s.queryMentions(ctx, "field_value_key", fieldValueKey)
}

// MentionsByFieldType retrieves mentions by reference shape.
func (s *SQLiteStore) MentionsByFieldType(ctx context.Context, fieldType string) ([]Mention, error) {
	return s.queryMentions(ctx, "field_type", fieldType)
}

func (s *SQLiteStore) queryMentions(ctx context.Context, column, value string) ([]Mention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, post_id, link, link_type, entity_type, entity_fqn, field_type, field_value, field_value_key
		 FROM mentions WHERE `+column+` = ? ORDER BY id`, value)
	if err != nil {
		return nil, cerrors.StorageError("query mentions", err).Build()
	}
	defer rows.Close()

	var mentions []Mention
	for rows.Next() {
		var m Mention
		err := rows.Scan(&m.ThreadID, &m.PostID, &m.Link, &m.LinkType, &m.EntityType, &m.EntityFQN, &m.FieldType, &m.FieldValue, &m.FieldValueKey)
		if err != nil {
			return nil, cerrors.StorageError("scan mention", err).Build()
		}
		mentions = append(mentions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.StorageError("iterate mentions", err).Build()
	}
	return mentions, nil
}

// ClearMentions removes all mention rows.
func (s *SQLiteStore) ClearMentions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM mentions"); err != nil {
		return cerrors.StorageError("clear mentions", err).Build()
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (*Thread, error) {
	var t Thread
	var createdAt int64
	if err := row.Scan(&t.ID, &t.About, &t.AboutFQN, &t.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &t, nil
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var p Post
		var postedAt int64
		if err := rows.Scan(&p.ID, &p.ThreadID, &p.From, &p.Message, &postedAt); err != nil {
			return nil, err
		}
		p.PostedAt = time.Unix(postedAt, 0).UTC()
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
