package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/feed"
	"git.home.luguber.info/inful/catlink/internal/server/responses"
)

// FeedHandlers contains thread and post HTTP handlers.
type FeedHandlers struct {
	service      *feed.Service
	errorAdapter *errors.HTTPErrorAdapter
}

// NewFeedHandlers creates a new feed handlers instance.
func NewFeedHandlers(service *feed.Service) *FeedHandlers {
	return &FeedHandlers{
		service:      service,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

type createThreadRequest struct {
	About     string `json:"about"`
	CreatedBy string `json:"created_by"`
	From      string `json:"from"`
	Message   string `json:"message"`
}

type addPostRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleCreateThread handles POST /api/v1/feed.
func (h *FeedHandlers) HandleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, errors.ValidationError("invalid request body").Build())
		return
	}
	if req.From == "" {
		req.From = req.CreatedBy
	}

	thread, err := h.service.CreateThread(r.Context(), req.About, req.CreatedBy, req.From, req.Message)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, err)
		return
	}

	resp := threadResponse(thread, false)
	if err := writeJSONPretty(w, r, http.StatusCreated, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write thread response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

// HandleListThreads handles GET /api/v1/feed with optional ?entityFQN= filter
// and ?limit=.
func (h *FeedHandlers) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.errorAdapter.WriteErrorResponse(w, errors.ValidationError("limit must be a non-negative integer").Build())
			return
		}
		limit = n
	}

	threads, err := h.service.ListThreads(r.Context(), r.URL.Query().Get("entityFQN"), limit)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, err)
		return
	}

	resp := responses.ThreadListResponse{
		Threads: make([]responses.ThreadResponse, 0, len(threads)),
		Count:   len(threads),
	}
	for _, t := range threads {
		resp.Threads = append(resp.Threads, threadResponse(t, false))
	}

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write thread list").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

// HandleGetThread handles GET /api/v1/feed/{id}. With ?render=html each post
// additionally carries its message rendered to HTML.
func (h *FeedHandlers) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.service.GetThread(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, err)
		return
	}

	renderHTML := r.URL.Query().Get("render") == "html"
	resp := threadResponse(thread, renderHTML)

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write thread response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

// HandleAddPost handles POST /api/v1/feed/{id}/posts.
func (h *FeedHandlers) HandleAddPost(w http.ResponseWriter, r *http.Request) {
	var req addPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, errors.ValidationError("invalid request body").Build())
		return
	}

	post, err := h.service.AddPost(r.Context(), r.PathValue("id"), req.From, req.Message)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, err)
		return
	}

	resp := postResponse(*post, false)
	if err := writeJSONPretty(w, r, http.StatusCreated, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write post response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

func threadResponse(t *feed.Thread, renderHTML bool) responses.ThreadResponse {
	resp := responses.ThreadResponse{
		ID:        t.ID,
		About:     t.About,
		AboutFQN:  t.AboutFQN,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		Posts:     make([]responses.PostResponse, 0, len(t.Posts)),
	}
	for _, p := range t.Posts {
		resp.Posts = append(resp.Posts, postResponse(p, renderHTML))
	}
	return resp
}

func postResponse(p feed.Post, renderHTML bool) responses.PostResponse {
	resp := responses.PostResponse{
		ID:       p.ID,
		From:     p.From,
		Message:  p.Message,
		PostedAt: p.PostedAt,
	}
	if renderHTML {
		html, err := feed.RenderMessageHTML(p.Message)
		if err != nil {
			slog.Warn("Failed to render post message", "post_id", p.ID, "error", err)
		} else {
			resp.MessageHTML = html
		}
	}
	return resp
}
