package api_parameter_save

import (
	"context"
	"net/http"
	"strings"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/types"
)

// Saver persists parameters.
type Saver interface {
	GetParameter(ctx context.Context, id uint) (*types.Parameter, error)
	SaveParameter(ctx context.Context, p *types.Parameter) error
}

// Compiler checks that an expression is well formed.
type Compiler interface {
	Compile(code string) error
}

// Handler handles parameter create and update requests
type Handler struct {
	store    Saver
	compiler Compiler
}

// New creates a new parameter save handler
func New(store Saver, compiler Compiler) *Handler {
	return &Handler{store: store, compiler: compiler}
}

// ServeHTTP stores the parameter. Expressions that do not compile are
// rejected up front so they never reach a rendered query.
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

	expression := strings.TrimSpace(r.FormValue("expression"))
	if err := h.compiler.Compile(expression); err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	param := &types.Parameter{}
	if id != 0 {
		if param, err = h.store.GetParameter(r.Context(), id); err != nil {
			shared.RespondErr(w, r, err)
			return
		}
	}
	param.Name = strings.TrimSpace(r.FormValue("name"))
	param.Description = strings.TrimSpace(r.FormValue("description"))
	param.Expression = expression

	if err := h.store.SaveParameter(r.Context(), param); err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	api.Respond(w, r, api.SuccessWithData("parameter_saved", map[string]any{
		"parameter": param,
	}))
}
