package api_query_execute

import (
	"context"
	"errors"
	"net/http"

	"github.com/dracory/api"

	"github.com/dracory/querybase/executor"
	"github.com/dracory/querybase/shared"
)

// Submitter queues a query for background execution.
type Submitter interface {
	Submit(ctx context.Context, queryID uint) (string, error)
}

// Handler submits a query template for asynchronous execution
type Handler struct {
	exec Submitter
}

// New creates a new query execute handler
func New(exec Submitter) *Handler {
	return &Handler{exec: exec}
}

// ServeHTTP answers 202 with the task handle as soon as the job is queued.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !shared.RequireMethod(w, r, http.MethodPost) {
		return
	}

	id, err := shared.FormUint(r, "query_id")
	if err != nil {
		shared.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	taskID, err := h.exec.Submit(r.Context(), id)
	if err != nil {
		if errors.Is(err, executor.ErrQueryNotFound) {
			shared.RespondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		shared.RespondErr(w, r, err)
		return
	}

	api.RespondWithStatusCode(w, r, api.SuccessWithData("query_submitted", map[string]any{
		"status":   "submitted",
		"task_id":  taskID,
		"query_id": id,
	}), http.StatusAccepted)
}
