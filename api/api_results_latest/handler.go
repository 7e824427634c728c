package api_results_latest

import (
	"context"
	"net/http"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Lister returns the newest result per query template.
type Lister interface {
	LatestResults(ctx context.Context) ([]types.ExecutionResult, error)
}

// Handler handles the latest results API requests
type Handler struct {
	store Lister
}

// New creates a new latest results handler
func New(store Lister) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	latest, err := h.store.LatestResults(r.Context())
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("results_latest", map[string]any{
		"results": latest,
		"count":   len(latest),
	}))
}
