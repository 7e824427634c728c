package querybase_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dracory/querybase"
	"github.com/dracory/querybase/shared/notify"
	"github.com/dracory/querybase/shared/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newTestApp(t *testing.T, cfg querybase.Config) (*querybase.App, string, *recordingNotifier) {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open("sqlite", filepath.Join(dir, "store.db"))
	require.NoError(t, err)

	n := &recordingNotifier{}
	app, err := querybase.New(cfg,
		querybase.WithDB(db),
		querybase.WithNotifier(n),
		querybase.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Close(ctx)
	})
	return app, dir, n
}

func call(t *testing.T, h http.Handler, method, action string, form url.Values) (int, envelope) {
	t.Helper()
	target := "/?action=" + action
	var body io.Reader
	if method == http.MethodGet {
		for k, vs := range form {
			for _, v := range vs {
				target += "&" + url.QueryEscape(k) + "=" + url.QueryEscape(v)
			}
		}
	} else {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

func id(t *testing.T, env envelope, key string) string {
	t.Helper()
	obj, ok := env.Data[key].(map[string]any)
	require.True(t, ok, "missing %s in %v", key, env.Data)
	n, ok := obj["id"].(float64)
	require.True(t, ok)
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func TestRouter(t *testing.T) {
	app, _, _ := newTestApp(t, querybase.Config{})
	h := app.Handler()

	code, env := call(t, h, http.MethodGet, "healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	code, env = call(t, h, http.MethodGet, "nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestEndToEnd(t *testing.T) {
	app, dir, notifier := newTestApp(t, querybase.Config{Workers: 2, EnabledDrivers: []string{querybase.SQLITE}})
	h := app.Handler()

	code, env := call(t, h, http.MethodPost, "connection_save", url.Values{
		"name":     {"local"},
		"kind":     {"sqlite3"},
		"database": {filepath.Join(dir, "target.db")},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	connID := id(t, env, "connection")

	code, env = call(t, h, http.MethodPost, "connection_test", url.Values{"id": {connID}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = call(t, h, http.MethodPost, "parameter_save", url.Values{"name": {"n"}, "expression": {"40 + 2"}})
	require.Equal(t, http.StatusOK, code, env.Message)
	paramID := id(t, env, "parameter")

	code, _ = call(t, h, http.MethodPost, "parameter_save", url.Values{"name": {"bad"}, "expression": {"1 +"}})
	assert.Equal(t, http.StatusBadRequest, code, "expressions must compile")

	code, env = call(t, h, http.MethodPost, "query_save", url.Values{
		"name":          {"answer"},
		"connection_id": {connID},
		"sql_template":  {"SELECT {{ n }} AS n, 'x' AS s"},
		"parameter_ids": {paramID},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	queryID := id(t, env, "query")

	code, env = call(t, h, http.MethodGet, "query_render", url.Values{"query_id": {queryID}})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "SELECT 42 AS n, 'x' AS s", env.Data["sql"])

	code, env = call(t, h, http.MethodPost, "query_execute", url.Values{"query_id": {queryID}})
	require.Equal(t, http.StatusAccepted, code, env.Message)
	assert.Equal(t, "submitted", env.Data["status"])
	assert.NotEmpty(t, env.Data["task_id"])

	require.Eventually(t, func() bool {
		latest, err := app.Store().LatestResults(context.Background())
		return err == nil && len(latest) == 1
	}, 5*time.Second, 20*time.Millisecond)

	code, env = call(t, h, http.MethodGet, "results_list", url.Values{"query_id": {queryID}})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.EqualValues(t, 1, env.Data["total"])
	results, ok := env.Data["results"].([]any)
	require.True(t, ok)
	first := results[0].(map[string]any)
	assert.Equal(t, "success", first["status"])
	assert.Equal(t, "SELECT 42 AS n, 'x' AS s", first["rendered_sql"])
	resultID := strconv.FormatFloat(first["id"].(float64), 'f', -1, 64)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?action=result_export&id="+resultID, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "n,s\n42,x\n", rr.Body.String())

	assert.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestDefaultConfig_RejectsSQLiteProfiles(t *testing.T) {
	app, dir, _ := newTestApp(t, querybase.Config{})
	h := app.Handler()

	code, env := call(t, h, http.MethodPost, "connection_save", url.Values{
		"name":     {"sneaky"},
		"kind":     {"sqlite"},
		"database": {filepath.Join(dir, "store.db")},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "unsupported backend")

	list, err := app.Store().ListConnections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	code, env = call(t, h, http.MethodGet, "healthz", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, env.Data["drivers"], "sqlite")
}
