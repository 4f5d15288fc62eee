package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/catlink/internal/entitylink"
	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/logfields"
	"git.home.luguber.info/inful/catlink/internal/metrics"
)

// Publisher sends mention events to downstream consumers. Implementations
// must tolerate being nil-checked; the service treats publishing as best
// effort and never fails a write because an event could not be sent.
type Publisher interface {
	PublishMention(event *MentionEvent) error
}

// Service coordinates thread/post writes with mention extraction, indexing,
// and event publishing.
type Service struct {
	store     Store
	publisher Publisher
	recorder  metrics.Recorder
	now       func() time.Time
}

// NewService creates a feed service. publisher may be nil when event
// publishing is disabled; recorder may be nil for no metrics.
func NewService(store Store, publisher Publisher, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// CreateThread validates the about link, stores the thread with its first
// post, and indexes the mentions embedded in the message.
func (s *Service) CreateThread(ctx context.Context, about, createdBy, from, message string) (*Thread, error) {
	aboutLink, err := entitylink.Parse(about)
	if err != nil {
		s.recorder.IncLinkParse(parseResult(err))
		return nil, cerrors.LinkParseError(about, err).Build()
	}
	s.recorder.IncLinkParse(metrics.ResultSuccess)

	if message == "" {
		return nil, cerrors.ValidationError("thread message must not be empty").Build()
	}

	now := s.now().UTC()
	thread := &Thread{
		ID:        uuid.NewString(),
		About:     aboutLink.String(),
		AboutFQN:  aboutLink.EntityFQN(),
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	post := Post{
		ID:       uuid.NewString(),
		ThreadID: thread.ID,
		From:     from,
		Message:  message,
		PostedAt: now,
	}
	thread.Posts = []Post{post}

	if err := s.store.CreateThread(ctx, thread); err != nil {
		return nil, err
	}
	s.recorder.IncThreadCreated()
	s.recorder.IncPostCreated()

	if err := s.indexMentions(ctx, thread.ID, &post); err != nil {
		return nil, err
	}

	slog.Info("Thread created",
		logfields.ThreadID(thread.ID),
		logfields.EntityFQN(thread.AboutFQN))
	return thread, nil
}

// AddPost appends a post to an existing thread and indexes its mentions.
func (s *Service) AddPost(ctx context.Context, threadID, from, message string) (*Post, error) {
	if message == "" {
		return nil, cerrors.ValidationError("post message must not be empty").Build()
	}

	post := &Post{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		From:     from,
		Message:  message,
		PostedAt: s.now().UTC(),
	}
	if err := s.store.AddPost(ctx, post); err != nil {
		return nil, err
	}
	s.recorder.IncPostCreated()

	if err := s.indexMentions(ctx, threadID, post); err != nil {
		return nil, err
	}

	slog.Info("Post added",
		logfields.ThreadID(threadID),
		logfields.PostID(post.ID))
	return post, nil
}

// GetThread retrieves a thread with its posts.
func (s *Service) GetThread(ctx context.Context, id string) (*Thread, error) {
	return s.store.GetThread(ctx, id)
}

// ListThreads retrieves threads, optionally filtered by the entity FQN of
// their about link.
func (s *Service) ListThreads(ctx context.Context, aboutFQN string, limit int) ([]*Thread, error) {
	return s.store.ListThreads(ctx, aboutFQN, limit)
}

// MentionsOf retrieves indexed mentions of the exact path the link addresses.
func (s *Service) MentionsOf(ctx context.Context, link entitylink.EntityLink) ([]Mention, error) {
	return s.store.MentionsByFieldValue(ctx, MentionKey(link.FieldValue()))
}

// MentionsOfShape retrieves indexed mentions by reference shape, e.g. every
// mention of any table's columns.
func (s *Service) MentionsOfShape(ctx context.Context, fieldType string) ([]Mention, error) {
	return s.store.MentionsByFieldType(ctx, fieldType)
}

// Reindex rebuilds the mention index from every stored post. Returns the
// number of mentions indexed.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	start := s.now()

	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.store.ClearMentions(ctx); err != nil {
		return 0, err
	}

	total := 0
	for i := range posts {
		mentions, err := s.extract(&posts[i])
		if err != nil {
			return total, err
		}
		if err := s.store.InsertMentions(ctx, mentions); err != nil {
			return total, err
		}
		total += len(mentions)
	}

	s.recorder.AddMentionsIndexed(total)
	s.recorder.ObserveReindexDuration(s.now().Sub(start))
	slog.Info("Mention index rebuilt", logfields.Mentions(total))
	return total, nil
}

// indexMentions extracts links from a post, stores mention rows, and
// publishes one event per mention.
func (s *Service) indexMentions(ctx context.Context, threadID string, post *Post) error {
	mentions, err := s.extract(post)
	if err != nil {
		return err
	}
	if len(mentions) == 0 {
		return nil
	}

	if err := s.store.InsertMentions(ctx, mentions); err != nil {
		return err
	}
	s.recorder.AddLinksExtracted(len(mentions))
	s.recorder.AddMentionsIndexed(len(mentions))

	if s.publisher != nil {
		for _, m := range mentions {
			event := NewMentionEvent(m, post.From, s.now().UTC())
			if err := s.publisher.PublishMention(event); err != nil {
				// Best effort: the mention row is already durable and the
				// reindexer restores consistency.
				s.recorder.IncEventPublish(false)
				slog.Warn("Failed to publish mention event",
					logfields.ThreadID(threadID),
					logfields.FieldValue(m.FieldValue),
					logfields.Error(err))
				continue
			}
			s.recorder.IncEventPublish(true)
		}
	}
	return nil
}

// extract parses every entity link in the post message into mention rows.
func (s *Service) extract(post *Post) ([]Mention, error) {
	links, err := entitylink.ExtractAll(post.Message)
	if err != nil {
		return nil, cerrors.LinkParseError(post.Message, err).Build()
	}

	mentions := make([]Mention, 0, len(links))
	for _, l := range links {
		mentions = append(mentions, Mention{
			ThreadID:      post.ThreadID,
			PostID:        post.ID,
			Link:          l.String(),
			LinkType:      string(l.Type()),
			EntityType:    l.EntityType(),
			EntityFQN:     l.EntityFQN(),
			FieldType:     l.FieldType(),
			FieldValue:    l.FieldValue(),
			FieldValueKey: MentionKey(l.FieldValue()),
		})
	}
	return mentions, nil
}

// MentionKey normalizes a field value to NFC so FQNs that differ only in
// Unicode representation index to the same key.
func MentionKey(fieldValue string) string {
	return norm.NFC.String(fieldValue)
}

// parseResult maps a strict-parse error to its metrics label.
func parseResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, entitylink.ErrMultipleLinks):
		return metrics.ResultAmbiguous
	default:
		return metrics.ResultMalformed
	}
}
