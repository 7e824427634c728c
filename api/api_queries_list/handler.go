package api_queries_list

import (
	"context"
	"net/http"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Lister returns the stored query templates.
type Lister interface {
	ListQueries(ctx context.Context) ([]types.QueryTemplate, error)
}

// Handler handles the query template list API requests
type Handler struct {
	store Lister
}

// New creates a new queries list handler
func New(store Lister) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	list, err := h.store.ListQueries(r.Context())
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("queries_listed", map[string]any{
		"queries": list,
		"count":   len(list),
	}))
}
