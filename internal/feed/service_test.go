package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catlink/internal/entitylink"
	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
)

type capturingPublisher struct {
	events []*MentionEvent
	err    error
}

func (p *capturingPublisher) PublishMention(event *MentionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T, pub Publisher) *Service {
	t.Helper()
	svc := NewService(newTestStore(t), pub, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateThreadIndexesMentions(t *testing.T) {
	pub := &capturingPublisher{}
	svc := newTestService(t, pub)
	ctx := t.Context()

	thread, err := svc.CreateThread(ctx,
		"<#E/table/db.orders>",
		"alice", "alice",
		"please review <#E/table/db.orders/columns/amount> before Friday")
	require.NoError(t, err)
	require.Len(t, thread.Posts, 1)

	link, err := entitylink.New("table", "db.orders", "columns", "amount", "")
	require.NoError(t, err)

	mentions, err := svc.MentionsOf(ctx, link)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	require.Equal(t, "db.orders.columns.amount", mentions[0].FieldValue)
	require.Equal(t, thread.ID, mentions[0].ThreadID)

	require.Len(t, pub.events, 1)
	require.Equal(t, "<#E/table/db.orders/columns/amount>", pub.events[0].Link)
	require.Equal(t, "alice", pub.events[0].From)
}

func TestCreateThreadRejectsBadAboutLink(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.CreateThread(t.Context(), "db.orders", "alice", "alice", "hi")
	require.Error(t, err)
	require.True(t, cerrors.IsCategory(err, cerrors.CategoryLink))
}

func TestCreateThreadRejectsEmptyMessage(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.CreateThread(t.Context(), "<#E/table/db.orders>", "alice", "alice", "")
	require.Error(t, err)
	require.True(t, cerrors.IsCategory(err, cerrors.CategoryValidation))
}

func TestAddPostPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &capturingPublisher{err: cerrors.New(cerrors.CategoryEvents, cerrors.SeverityWarning, "broker down").Build()}
	svc := newTestService(t, pub)
	ctx := t.Context()

	thread, err := svc.CreateThread(ctx, "<#E/table/db.orders>", "alice", "alice", "opening")
	require.NoError(t, err)

	post, err := svc.AddPost(ctx, thread.ID, "bob", "see <#E/table/db.orders/description>")
	require.NoError(t, err)

	got, err := svc.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, got.Posts, 2)
	require.Equal(t, post.ID, got.Posts[1].ID)

	link, err := entitylink.New("table", "db.orders", "description", "", "")
	require.NoError(t, err)
	mentions, err := svc.MentionsOf(ctx, link)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
}

func TestMentionsOfShape(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := t.Context()

	_, err := svc.CreateThread(ctx, "<#E/table/db.orders>", "alice", "alice",
		"<#E/table/db.orders/columns/amount> and <#E/table/db.billing/columns/total>")
	require.NoError(t, err)

	mentions, err := svc.MentionsOfShape(ctx, "table.columns.member")
	require.NoError(t, err)
	require.Len(t, mentions, 2)
}

func TestMentionKeyNormalizesUnicode(t *testing.T) {
	composed := "db.caf\u00e9"
	decomposed := "db.cafe\u0301"
	require.NotEqual(t, composed, decomposed)
	require.Equal(t, MentionKey(composed), MentionKey(decomposed))
}

func TestReindexRebuildsIndex(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := t.Context()

	thread, err := svc.CreateThread(ctx, "<#E/table/db.orders>", "alice", "alice",
		"<#E/table/db.orders/description>")
	require.NoError(t, err)
	_, err = svc.AddPost(ctx, thread.ID, "bob", "also <#E/dashboard/sales.q3>")
	require.NoError(t, err)

	total, err := svc.Reindex(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	link, err := entitylink.New("dashboard", "sales.q3", "", "", "")
	require.NoError(t, err)
	mentions, err := svc.MentionsOf(ctx, link)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
}
