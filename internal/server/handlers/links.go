package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/catlink/internal/entitylink"
	"git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/server/responses"
)

// LinkHandlers contains the entity link parse and extract HTTP handlers.
type LinkHandlers struct {
	errorAdapter *errors.HTTPErrorAdapter
}

// NewLinkHandlers creates a new link handlers instance.
func NewLinkHandlers() *LinkHandlers {
	return &LinkHandlers{
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// parseRequest is the body of both link endpoints.
type parseRequest struct {
	Text string `json:"text"`
}

// HandleParse handles POST /api/v1/links/parse. The text must contain exactly
// one well-formed link; anything else is a 400 with a structured error body.
func (h *LinkHandlers) HandleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	link, err := entitylink.Parse(req.Text)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, errors.LinkParseError(req.Text, err).Build())
		return
	}

	resp := linkResponse(link)
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write parse response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

// HandleExtract handles POST /api/v1/links/extract. Extraction is lenient:
// malformed candidates are skipped and an empty array is a valid result.
func (h *LinkHandlers) HandleExtract(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	links, err := entitylink.ExtractAll(req.Text)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, errors.LinkParseError(req.Text, err).Build())
		return
	}

	resp := responses.ExtractResponse{
		Links: make([]responses.LinkResponse, 0, len(links)),
		Count: len(links),
	}
	for _, l := range links {
		resp.Links = append(resp.Links, linkResponse(l))
	}

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write extract response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

func (h *LinkHandlers) decodeRequest(w http.ResponseWriter, r *http.Request) (parseRequest, bool) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, errors.ValidationError("invalid request body").
			WithContext("path", r.URL.Path).
			Build())
		return req, false
	}
	if req.Text == "" {
		h.errorAdapter.WriteErrorResponse(w, errors.ValidationError("text is required").Build())
		return req, false
	}
	return req, true
}

func linkResponse(l entitylink.EntityLink) responses.LinkResponse {
	return responses.LinkResponse{
		Link:            l.String(),
		LinkType:        string(l.Type()),
		EntityType:      l.EntityType(),
		EntityFQN:       l.EntityFQN(),
		FieldName:       l.FieldName(),
		ArrayFieldName:  l.ArrayFieldName(),
		ArrayFieldValue: l.ArrayFieldValue(),
		FieldType:       l.FieldType(),
		FieldValue:      l.FieldValue(),
	}
}
