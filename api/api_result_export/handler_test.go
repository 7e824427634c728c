package api_result_export_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dracory/querybase/api/api_result_export"
	"github.com/dracory/querybase/shared/store"
	"github.com/dracory/querybase/shared/types"
)

type fakeStore map[uint]*types.ExecutionResult

func (f fakeStore) GetResult(_ context.Context, id uint) (*types.ExecutionResult, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func strPtr(s string) *string { return &s }

func TestHandler_ServeHTTP(t *testing.T) {
	results := fakeStore{
		1: {ID: 1, Status: "success", ResultData: strPtr(`[{"a":1},{"b":2}]`)},
		2: {ID: 2, Status: "failed", ErrorMessage: "boom"},
		3: {ID: 3, Status: "success", ResultData: strPtr(`[]`)},
		4: {ID: 4, Status: "success"},
	}

	tests := []struct {
		name           string
		target         string
		method         string
		expectedStatus int
		expectCSV      string
	}{
		{name: "exports rows", target: "/?id=1", expectedStatus: http.StatusOK, expectCSV: "a,b\n1,\n,2\n"},
		{name: "failed result", target: "/?id=2", expectedStatus: http.StatusBadRequest},
		{name: "empty rows", target: "/?id=3", expectedStatus: http.StatusBadRequest},
		{name: "no data", target: "/?id=4", expectedStatus: http.StatusBadRequest},
		{name: "unknown result", target: "/?id=99", expectedStatus: http.StatusNotFound},
		{name: "missing id", target: "/", expectedStatus: http.StatusBadRequest},
		{name: "wrong method", target: "/?id=1", method: http.MethodPost, expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, tt.target, nil)
			rr := httptest.NewRecorder()

			api_result_export.New(results).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectCSV != "" {
				assert.Equal(t, tt.expectCSV, rr.Body.String())
				assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
				assert.Regexp(t, `attachment; filename="result_1_\d{14}\.csv"`, rr.Header().Get("Content-Disposition"))
				return
			}

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp["status"])
		})
	}
}
