package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openml/openml-go/api/pipeline"
	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/api/routes"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	env := config.Defaults()
	env.AdminKey = "admin-key"
	env.EvaluatorPollIntervalSec = 0
	cfg := config.Config{Environment: env}
	st, err := store.New(&cfg, queue.NewListFIFOQueue(10), nil)
	require.NoError(t, err)
	runner := pipeline.NewEvaluationRunner(&cfg, st)
	t.Cleanup(runner.Stop)
	r, err := NewRouter(cfg, st, runner)
	require.NoError(t, err)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, method string, url string, out interface{}) int {
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestAdminRequiresAdminKey(t *testing.T) {
	server := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, call(t, http.MethodGet, server.URL+"/admin/status", nil))
	assert.Equal(t, http.StatusForbidden, call(t, http.MethodGet, server.URL+"/admin/status?api_key=user-key", nil))

	var stats store.Stats
	assert.Equal(t, http.StatusOK, call(t, http.MethodGet, server.URL+"/admin/status?api_key=admin-key", &stats))
	assert.Equal(t, 0, stats.Datasets)
	assert.Equal(t, 0, stats.Runs)
	assert.Equal(t, 0, stats.Waiting)
}

func TestAdminQueue(t *testing.T) {
	server := newTestServer(t)

	var waiting routes.WaitingResponse
	assert.Equal(t, http.StatusOK, call(t, http.MethodGet, server.URL+"/admin/queue?api_key=admin-key", &waiting))
	assert.Equal(t, 0, waiting.Count)

	assert.Equal(t, http.StatusOK, call(t, http.MethodDelete, server.URL+"/admin/queue?api_key=admin-key", &waiting))
	assert.Equal(t, 0, waiting.Count)
}

func TestAdminEvaluator(t *testing.T) {
	server := newTestServer(t)
	status := func() routes.EvaluatorState {
		var state routes.EvaluatorState
		require.Equal(t, http.StatusOK, call(t, http.MethodGet, server.URL+"/admin/evaluator?api_key=admin-key", &state))
		return state
	}

	assert.False(t, status().Running)

	var dispatched routes.DispatchResponse
	assert.Equal(t, http.StatusOK, call(t, http.MethodPost, server.URL+"/admin/evaluator/dispatch?api_key=admin-key", &dispatched))
	assert.Equal(t, 0, dispatched.RunID)

	assert.Equal(t, http.StatusOK, call(t, http.MethodPost, server.URL+"/admin/evaluator/start?api_key=admin-key", nil))
	assert.True(t, status().Running)

	assert.Equal(t, http.StatusOK, call(t, http.MethodPost, server.URL+"/admin/evaluator/stop?api_key=admin-key", nil))
	assert.Eventually(t, func() bool { return !status().Running }, 2*time.Second, 10*time.Millisecond)
}
