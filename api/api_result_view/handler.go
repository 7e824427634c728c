package api_result_view

import (
	"context"
	"net/http"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Getter loads one execution result.
type Getter interface {
	GetResult(ctx context.Context, id uint) (*types.ExecutionResult, error)
}

// Handler returns a single execution result
type Handler struct {
	store Getter
}

// New creates a new result view handler
func New(store Getter) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	id, err := shared.FormUint(r, "id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.store.GetResult(r.Context(), id)
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("result_found", map[string]any{
		"result": result,
	}))
}
