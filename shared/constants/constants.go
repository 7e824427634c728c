package constants

// Backend kinds a connection profile can point at.
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
	DriverOracle    = "oracle"
)

// Execution result statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Action names for the single-endpoint router.
const (
	ActionHealthz = "healthz"

	ActionConnectionsList = "connections_list"
	ActionConnectionSave  = "connection_save"
	ActionConnectionTest  = "connection_test"

	ActionParametersList    = "parameters_list"
	ActionParameterSave     = "parameter_save"
	ActionParameterEvaluate = "parameter_evaluate"

	ActionQueriesList  = "queries_list"
	ActionQuerySave    = "query_save"
	ActionQueryRender  = "query_render"
	ActionQueryExecute = "query_execute"

	ActionResultsList   = "results_list"
	ActionResultsLatest = "results_latest"
	ActionResultView    = "result_view"
	ActionResultExport  = "result_export"
)

// Defaults shared by config, store and api packages.
const (
	DefaultConnectionTimeout = 30 // seconds
	DefaultPageSize          = 10
	MaxPageSize              = 100

	// TimestampLayout is used for timestamps inside serialized result rows.
	TimestampLayout = "2006-01-02 15:04:05"
)
