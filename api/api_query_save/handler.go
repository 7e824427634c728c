package api_query_save

import (
	"context"
	"net/http"
	"strings"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Saver persists query templates together with their parameter bindings.
type Saver interface {
	GetQuery(ctx context.Context, id uint) (*types.QueryTemplate, error)
	SaveQuery(ctx context.Context, q *types.QueryTemplate, parameterIDs []uint) error
}

// Handler handles query template create and update requests
type Handler struct {
	store Saver
}

// New creates a new query save handler
func New(store Saver) *Handler {
	return &Handler{store: store}
}

// ServeHTTP stores the template. parameter_ids is a comma separated list
// and replaces the previous bindings.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, "failed to parse form")
		return
	}

	id, err := shared.FormUintOptional(r, "id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	connectionID, err := shared.FormUint(r, "connection_id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	parameterIDs, err := shared.FormUints(r, "parameter_ids")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	query := &types.QueryTemplate{}
	if id != 0 {
		if query, err = h.store.GetQuery(r.Context(), id); err != nil {
			shared.RespondErr(w, r, err)
			return
		}
	}
	query.Name = strings.TrimSpace(r.FormValue("name"))
	query.ConnectionID = connectionID
	query.SQLTemplate = strings.TrimSpace(r.FormValue("sql_template"))

	if err := h.store.SaveQuery(r.Context(), query, parameterIDs); err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("query_saved", map[string]any{
		"query": query,
	}))
}
