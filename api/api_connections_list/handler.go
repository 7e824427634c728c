package api_connections_list

import (
	"context"
	"net/http"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Lister returns the stored connection profiles.
type Lister interface {
	ListConnections(ctx context.Context) ([]types.ConnectionProfile, error)
}

// Handler handles the connections list API requests
type Handler struct {
	store Lister
}

// New creates a new connections list handler
func New(store Lister) *Handler {
	return &Handler{store: store}
}

// ServeHTTP lists profiles. Passwords are never serialised.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	list, err := h.store.ListConnections(r.Context())
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("connections_listed", map[string]any{
		"connections": list,
		"count":       len(list),
	}))
}
