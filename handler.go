package querybase

import (
	"net/http"

	"github.com/dracory/querybase/api/api_connection_save"
	"github.com/dracory/querybase/api/api_connection_check"
	"github.com/dracory/querybase/api/api_connections_list"
	"github.com/dracory/querybase/api/api_parameter_evaluate"
	"github.com/dracory/querybase/api/api_parameter_save"
	"github.com/dracory/querybase/api/api_parameters_list"
	"github.com/dracory/querybase/api/api_queries_list"
	"github.com/dracory/querybase/api/api_query_execute"
	"github.com/dracory/querybase/api/api_query_render"
	"github.com/dracory/querybase/api/api_query_save"
	"github.com/dracory/querybase/api/api_result_export"
	"github.com/dracory/querybase/api/api_result_view"
	"github.com/dracory/querybase/api/api_results_latest"
	"github.com/dracory/querybase/api/api_results_list"
	"github.com/dracory/querybase/shared/constants"
)

// handleRequest routes requests to the handler selected by the action param.
func (a *App) handleRequest(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get(a.config.ActionParam)

	var h http.Handler
	switch action {
	case constants.ActionHealthz:
		WriteSuccessWithData(w, r, "ok", map[string]any{"drivers": a.drivers.List()})
		return

	// connection profiles
	case constants.ActionConnectionsList:
		h = api_connections_list.New(a.store)
	case constants.ActionConnectionSave:
		h = api_connection_save.New(a.store, a.drivers)
	case constants.ActionConnectionTest:
		h = api_connection_check.New(a.store, a.drivers)

	// parameters
	case constants.ActionParametersList:
		h = api_parameters_list.New(a.store)
	case constants.ActionParameterSave:
		h = api_parameter_save.New(a.store, a.eval)
	case constants.ActionParameterEvaluate:
		h = api_parameter_evaluate.New(a.eval)

	// query templates
	case constants.ActionQueriesList:
		h = api_queries_list.New(a.store)
	case constants.ActionQuerySave:
		h = api_query_save.New(a.store)
	case constants.ActionQueryRender:
		h = api_query_render.New(a.store, a.eval)
	case constants.ActionQueryExecute:
		h = api_query_execute.New(a.executor)

	// results
	case constants.ActionResultsList:
		h = api_results_list.New(a.store)
	case constants.ActionResultsLatest:
		h = api_results_latest.New(a.store)
	case constants.ActionResultView:
		h = api_result_view.New(a.store)
	case constants.ActionResultExport:
		h = api_result_export.New(a.store)

	case "":
		WriteError(w, r, http.StatusBadRequest, "missing "+a.config.ActionParam+" parameter")
		return
	default:
		WriteError(w, r, http.StatusNotFound, "unknown action: "+action)
		return
	}

	h.ServeHTTP(w, r)
}
