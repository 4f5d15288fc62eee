package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catlink/internal/server/responses"
)

func doParse(t *testing.T, h *LinkHandlers, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/parse", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleParse(rec, req)
	return rec
}

func TestHandleParseValidLink(t *testing.T) {
	h := NewLinkHandlers()

	rec := doParse(t, h, `{"text": "<#E/table/db.orders/columns/amount>"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.LinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "array_field", resp.LinkType)
	require.Equal(t, "table", resp.EntityType)
	require.Equal(t, "db.orders", resp.EntityFQN)
	require.Equal(t, "table.columns.member", resp.FieldType)
	require.Equal(t, "db.orders.columns.amount", resp.FieldValue)
}

func TestHandleParseMalformed(t *testing.T) {
	h := NewLinkHandlers()

	rec := doParse(t, h, `{"text": "no link here"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "link")
}

func TestHandleParseAmbiguous(t *testing.T) {
	h := NewLinkHandlers()

	rec := doParse(t, h, `{"text": "<#E/table/a> and <#E/table/b>"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleParseEmptyBody(t *testing.T) {
	h := NewLinkHandlers()

	rec := doParse(t, h, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtract(t *testing.T) {
	h := NewLinkHandlers()

	body := `{"text": "see <#E/table/db.a> and broken <#E/x> and <#E/table/db.b/description>"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleExtract(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "<#E/table/db.a>", resp.Links[0].Link)
	require.Equal(t, "db.b.description", resp.Links[1].FieldValue)
}

func TestHandleExtractNoLinks(t *testing.T) {
	h := NewLinkHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/extract", strings.NewReader(`{"text": "plain text"}`))
	rec := httptest.NewRecorder()
	h.HandleExtract(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Count)
	require.Empty(t, resp.Links)
}
