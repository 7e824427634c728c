package querybase

import (
	shconst "github.com/dracory/querybase/shared/constants"
)

// Action names for the single-endpoint router.
const (
	ActionHealthz = shconst.ActionHealthz

	ActionConnectionsList = shconst.ActionConnectionsList
	ActionConnectionSave  = shconst.ActionConnectionSave
	ActionConnectionTest  = shconst.ActionConnectionTest

	ActionParametersList    = shconst.ActionParametersList
	ActionParameterSave     = shconst.ActionParameterSave
	ActionParameterEvaluate = shconst.ActionParameterEvaluate

	ActionQueriesList  = shconst.ActionQueriesList
	ActionQuerySave    = shconst.ActionQuerySave
	ActionQueryRender  = shconst.ActionQueryRender
	ActionQueryExecute = shconst.ActionQueryExecute

	ActionResultsList   = shconst.ActionResultsList
	ActionResultsLatest = shconst.ActionResultsLatest
	ActionResultView    = shconst.ActionResultView
	ActionResultExport  = shconst.ActionResultExport
)

// Supported target backends
const (
	MYSQL    = shconst.DriverMySQL
	POSTGRES = shconst.DriverPostgres
	SQLITE   = shconst.DriverSQLite
	SQLSRV   = shconst.DriverSQLServer
	ORACLE   = shconst.DriverOracle
)
