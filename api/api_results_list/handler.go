package api_results_list

import (
	"context"
	"net/http"
	"strings"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/store"
	"github.com/dracory/querybase/shared/types"
)

// Lister pages through execution results.
type Lister interface {
	ListResults(ctx context.Context, f store.ResultFilter) ([]types.ExecutionResult, int64, error)
}

// Handler handles the execution history API requests
type Handler struct {
	store Lister
}

// New creates a new results list handler
func New(store Lister) *Handler {
	return &Handler{store: store}
}

// ServeHTTP filters by query_id, status and search, newest first.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodGet) {
		return
	}

	queryID, err := shared.FormUintOptional(r, "query_id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	status := strings.TrimSpace(r.FormValue("status"))
	if status != "" && status != constants.StatusSuccess && status != constants.StatusFailed {
		shared.RespondError(w, r, http.StatusBadRequest, "status must be success or failed")
		return
	}

	filter := store.ResultFilter{
		QueryID:  queryID,
		Status:   status,
		Search:   strings.TrimSpace(r.FormValue("search")),
		Page:     shared.FormInt(r, "page", 1),
		PageSize: shared.FormInt(r, "page_size", constants.DefaultPageSize),
	}
	filter = filter.Normalized()

	results, total, err := h.store.ListResults(r.Context(), filter)
	if err != nil {
		shared.RespondErr(w, r, err)
		return
	}

	pages := (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	api.Respond(w, r, api.SuccessWithData("results_listed", map[string]any{
		"results":   results,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
		"pages":     pages,
	}))
}
