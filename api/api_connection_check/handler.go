package api_connection_check

import (
	"context"
	"net/http"
	"time"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/driver"
	"github.com/dracory/querybase/shared/types"
)

// Getter loads a stored profile.
type Getter interface {
	GetConnection(ctx context.Context, id uint) (*types.ConnectionProfile, error)
}

// Handler checks that a stored profile can be connected to
type Handler struct {
	store   Getter
	drivers driver.Opener
}

// New creates a new connection test handler
func New(store Getter, drivers driver.Opener) *Handler {
	return &Handler{store: store, drivers: drivers}
}

// ServeHTTP opens a session for the profile and closes it again.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodPost) {
		return
	}

	id, err := shared.FormUint(r, "id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.store.GetConnection(r.Context(), id)
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	start := time.Now()
	err = driver.With(r.Context(), h.drivers, *profile, func(driver.Session) error { return nil })
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("connection_ok", map[string]any{
		"id":       profile.ID,
		"kind":     profile.Kind,
		"duration": time.Since(start).Seconds(),
	}))
}
