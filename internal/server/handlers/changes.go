package handlers

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/catlink/internal/changetracker"
	"git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/server/responses"
)

// ChangeHandlers serves the change log query endpoint.
type ChangeHandlers struct {
	log          *changetracker.ChangeLog
	errorAdapter *errors.HTTPErrorAdapter
}

// NewChangeHandlers creates a new change handlers instance.
func NewChangeHandlers(log *changetracker.ChangeLog) *ChangeHandlers {
	return &ChangeHandlers{
		log:          log,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleChanges handles GET /api/v1/changes. Exactly one of ?link= (exact
// rendered link) or ?fieldType= (reference shape) selects the records.
func (h *ChangeHandlers) HandleChanges(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	fieldType := r.URL.Query().Get("fieldType")

	if (link == "") == (fieldType == "") {
		h.errorAdapter.WriteErrorResponse(w, errors.ValidationError("exactly one of link or fieldType is required").Build())
		return
	}

	var records []changetracker.ChangeRecord
	resp := responses.ChangesResponse{}
	if link != "" {
		records = h.log.ChangesFor(link)
		resp.Link = link
	} else {
		records = h.log.ChangesOfShape(fieldType)
		resp.FieldType = fieldType
	}

	resp.Changes = make([]responses.ChangeResponse, 0, len(records))
	for _, rec := range records {
		resp.Changes = append(resp.Changes, responses.ChangeResponse{
			Link:            rec.Link,
			EntityType:      rec.EntityType,
			EntityFQN:       rec.EntityFQN,
			FieldType:       rec.FieldType,
			EventType:       rec.EventType,
			FieldName:       rec.FieldName,
			OldValue:        rec.OldValue,
			NewValue:        rec.NewValue,
			PreviousVersion: rec.PreviousVersion,
			Version:         rec.Version,
			UpdatedBy:       rec.UpdatedBy,
			Timestamp:       rec.Timestamp,
		})
	}
	resp.Count = len(resp.Changes)

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write changes response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}
