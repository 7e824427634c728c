package api_result_export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/csvexport"
	"github.com/dracory/querybase/shared/types"
)

// Getter loads one execution result.
type Getter interface {
	GetResult(ctx context.Context, id uint) (*types.ExecutionResult, error)
}

// Handler downloads the rows of a successful result as CSV
type Handler struct {
	store Getter
	now   func() time.Time
}

// New creates a new result export handler
func New(store Getter) *Handler {
	return &Handler{store: store, now: time.Now}
}

// ServeHTTP writes the CSV attachment. Only successful results with data
// can be exported.
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

	if result.Status != constants.StatusSuccess || isEmpty(result.ResultData) {
		shared.RespondError(w, r, http.StatusBadRequest, "no data available for export")
		return
	}

	var buf bytes.Buffer
	if err := csvexport.Write(&buf, *result.ResultData); err != nil {
		shared.RespondError(w, r, http.StatusInternalServerError, "failed to export result: "+err.Error())
		return
	}

	filename := fmt.Sprintf("result_%d_%s.csv", result.ID, h.now().Format("20060102150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// isEmpty treats a missing payload and an empty row set alike.
func isEmpty(data *string) bool {
	if data == nil {
		return true
	}
	switch strings.TrimSpace(*data) {
	case "", "[]", "null":
		return true
	}
	return false
}
