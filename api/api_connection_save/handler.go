package api_connection_save

import (
	"context"
	"net/http"
	"strings"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/driver"
	"github.com/dracory/querybase/shared/types"
)

// Saver persists connection profiles.
type Saver interface {
	GetConnection(ctx context.Context, id uint) (*types.ConnectionProfile, error)
	SaveConnection(ctx context.Context, p *types.ConnectionProfile) error
}

// KindValidator rejects backend kinds that are not enabled.
type KindValidator interface {
	Validate(kind string) error
}

// Handler handles connection profile create and update requests
type Handler struct {
	store   Saver
	drivers KindValidator
}

// New creates a new connection save handler
func New(store Saver, drivers KindValidator) *Handler {
	return &Handler{store: store, drivers: drivers}
}

// ServeHTTP creates a profile, or updates it when id is given. A blank
// password or timeout on update keeps the stored one.
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

	kind := driver.Normalize(r.FormValue("kind"))
	if err := h.drivers.Validate(kind); err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	profile := &types.ConnectionProfile{}
	if id != 0 {
		if profile, err = h.store.GetConnection(r.Context(), id); err != nil {
			shared.RespondErr(w, r, err)
			return
		}
	}

	profile.Name = strings.TrimSpace(r.FormValue("name"))
	profile.Kind = kind
	profile.Host = strings.TrimSpace(r.FormValue("host"))
	profile.Port = shared.FormInt(r, "port", 0)
	profile.Username = r.FormValue("username")
	profile.Database = strings.TrimSpace(r.FormValue("database"))
	if strings.TrimSpace(r.FormValue("timeout")) != "" || id == 0 {
		profile.Timeout = shared.FormInt(r, "timeout", 0)
	}
	if pw := r.FormValue("password"); pw != "" || id == 0 {
		profile.Password = pw
	}

	if err := h.store.SaveConnection(r.Context(), profile); err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("connection_saved", map[string]any{
		"connection": profile,
	}))
}
