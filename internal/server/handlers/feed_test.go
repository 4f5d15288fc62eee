package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catlink/internal/feed"
	"git.home.luguber.info/inful/catlink/internal/server/responses"
)

func newFeedHandlers(t *testing.T) *FeedHandlers {
	t.Helper()
	store, err := feed.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewFeedHandlers(feed.NewService(store, nil, nil))
}

func createThread(t *testing.T, h *FeedHandlers, body string) responses.ThreadResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feed", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCreateThread(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp responses.ThreadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleCreateThread(t *testing.T) {
	h := newFeedHandlers(t)

	resp := createThread(t, h, `{
		"about": "<#E/table/db.orders>",
		"created_by": "alice",
		"message": "kicking off review of <#E/table/db.orders/description>"
	}`)
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "db.orders", resp.AboutFQN)
	require.Len(t, resp.Posts, 1)
	require.Equal(t, "alice", resp.Posts[0].From)
}

func TestHandleCreateThreadBadLink(t *testing.T) {
	h := newFeedHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feed", strings.NewReader(`{
		"about": "db.orders",
		"created_by": "alice",
		"message": "hi"
	}`))
	rec := httptest.NewRecorder()
	h.HandleCreateThread(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListThreadsFiltered(t *testing.T) {
	h := newFeedHandlers(t)
	createThread(t, h, `{"about": "<#E/table/db.a>", "created_by": "alice", "message": "a"}`)
	createThread(t, h, `{"about": "<#E/table/db.b>", "created_by": "bob", "message": "b"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed?entityFQN=db.b", nil)
	rec := httptest.NewRecorder()
	h.HandleListThreads(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.ThreadListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "db.b", resp.Threads[0].AboutFQN)
}

func TestHandleGetThreadRendersHTML(t *testing.T) {
	h := newFeedHandlers(t)
	created := createThread(t, h, `{
		"about": "<#E/table/db.orders>",
		"created_by": "alice",
		"message": "see <#E/table/db.orders/description>"
	}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/"+created.ID+"?render=html", nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.HandleGetThread(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.ThreadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	require.Contains(t, resp.Posts[0].MessageHTML, "<code>db.orders.description</code>")
}

func TestHandleGetThreadNotFound(t *testing.T) {
	h := newFeedHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.HandleGetThread(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAddPost(t *testing.T) {
	h := newFeedHandlers(t)
	created := createThread(t, h, `{"about": "<#E/table/db.orders>", "created_by": "alice", "message": "first"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feed/"+created.ID+"/posts",
		strings.NewReader(`{"from": "bob", "message": "reply with <#E/table/db.orders/tags>"}`))
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.HandleAddPost(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp responses.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bob", resp.From)
}
