package api_query_render

import (
	"context"
	"net/http"

	"github.com/dracory/api"
	"github.com/samber/lo"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/render"
	"github.com/dracory/querybase/shared/types"
)

// Getter loads a query template with its parameters.
type Getter interface {
	GetQuery(ctx context.Context, id uint) (*types.QueryTemplate, error)
}

// Handler previews the SQL a query template renders to right now
type Handler struct {
	store Getter
	eval  render.Evaluator
}

// New creates a new query render handler
func New(store Getter, eval render.Evaluator) *Handler {
	return &Handler{store: store, eval: eval}
}

// ServeHTTP renders the template without executing it. Placeholders with no
// bound parameter are reported as unresolved.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	id, err := shared.FormUint(r, "query_id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	query, err := h.store.GetQuery(r.Context(), id)
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	values := render.Resolve(query.Parameters, h.eval)
	sql := render.Render(query.SQLTemplate, values)

	api.Respond(w, r, api.SuccessWithData("query_rendered", map[string]any{
		"query_id": query.ID,
		"sql":      sql,
		"parameters": lo.SliceToMap(values, func(v render.Value) (string, string) {
			return v.Name, render.Stringify(v.Value)
		}),
		"unresolved": render.Unresolved(sql),
	}))
}
