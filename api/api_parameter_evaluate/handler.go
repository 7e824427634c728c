package api_parameter_evaluate

import (
	"net/http"
	"strings"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/render"
)

// Evaluator runs an expression and reports failures.
type Evaluator interface {
	Eval(code string) (any, error)
}

// Handler previews the value of a parameter expression
type Handler struct {
	eval Evaluator
}

// New creates a new parameter evaluate handler
func New(eval Evaluator) *Handler {
	return &Handler{eval: eval}
}

// ServeHTTP evaluates the expression. Evaluation failures are part of the
// preview and still answer with success.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodPost) {
		return
	}

	expression := strings.TrimSpace(r.FormValue("expression"))
	if expression == "" {
		shared.RespondError(w, r, http.StatusBadRequest, "expression is required")
		return
	}

	value, err := h.eval.Eval(expression)
	data := map[string]any{
		"expression": expression,
		"value":      nil,
		"rendered":   "",
		"error":      "",
	}
	if err != nil {
		data["error"] = err.Error()
	} else {
		data["value"] = value
		data["rendered"] = render.Stringify(value)
	}

	api.Respond(w, r, api.SuccessWithData("parameter_evaluated", data))
}
