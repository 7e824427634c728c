package api_parameters_list

import (
	"context"
	"net/http"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Lister returns the stored parameters.
type Lister interface {
	ListParameters(ctx context.Context) ([]types.Parameter, error)
}

// Handler handles the parameters list API requests
type Handler struct {
	store Lister
}

// New creates a new parameters list handler
func New(store Lister) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	list, err := h.store.ListParameters(r.Context())
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("parameters_listed", map[string]any{
		"parameters": list,
		"count":      len(list),
	}))
}
