package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph-backend/application/session"
	"mindgraph-backend/infrastructure/config"
	"mindgraph-backend/infrastructure/oracle"
	"mindgraph-backend/interfaces/websocket"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	hub := websocket.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	cfg := &config.Config{
		ServerAddress:   ":0",
		Environment:     "test",
		LayoutAllocator: "grid",
	}
	sessions := session.NewManager(nil, oracle.NewScriptedOracle(), session.AllocatorGrid, logger)

	srv := httptest.NewServer(NewRouter(cfg, sessions, hub, logger).Setup())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.SessionID)
	return created.SessionID
}

func TestRouter_HealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRouter_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv)

	status, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouter_DeltaFlow(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv)
	base := srv.URL + "/api/v1/sessions/" + sessionID

	status, env := doJSON(t, http.MethodPost, base+"/deltas", map[string]interface{}{
		"nodes": []map[string]string{
			{"label": "Addition practice", "category": "action"},
			{"label": "Carry operation"},
			{"label": "Stray fact"},
		},
		"edges": []map[string]string{
			{"source": "Addition practice", "target": "Carry operation", "relationship": "requires"},
		},
	})
	require.Equal(t, http.StatusOK, status)

	var report struct {
		AddedNodes []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"addedNodes"`
		AddedEdges []json.RawMessage `json:"addedEdges"`
		Skipped    []json.RawMessage `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Len(t, report.AddedNodes, 3)
	assert.Len(t, report.AddedEdges, 1)
	assert.Empty(t, report.Skipped)

	// A payload without a nodes array is rejected wholesale.
	status, env = doJSON(t, http.MethodPost, base+"/deltas", map[string]interface{}{
		"edges": []map[string]string{{"source": "a", "target": "b"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)

	// Finalize attaches the stray node.
	status, env = doJSON(t, http.MethodPost, base+"/finalize", nil)
	require.Equal(t, http.StatusOK, status)

	var finalize struct {
		EdgesAdded             int `json:"edgesAdded"`
		IsolatedNodesRemaining int `json:"isolatedNodesRemaining"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &finalize))
	assert.Equal(t, 1, finalize.EdgesAdded)
	assert.Zero(t, finalize.IsolatedNodesRemaining)

	// Graph reflects everything committed so far.
	status, env = doJSON(t, http.MethodGet, base+"/graph", nil)
	require.Equal(t, http.StatusOK, status)

	var snapshot struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Len(t, snapshot.Nodes, 3)
	assert.Len(t, snapshot.Edges, 2)

	// Merge two of the nodes.
	status, env = doJSON(t, http.MethodPost, base+"/merge", map[string]interface{}{
		"nodeIds":  []string{report.AddedNodes[1].ID, report.AddedNodes[2].ID},
		"newLabel": "combined",
	})
	require.Equal(t, http.StatusOK, status)

	var merged struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &merged))
	assert.Equal(t, "combined", merged.Label)

	status, env = doJSON(t, http.MethodGet, base+"/graph", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Len(t, snapshot.Nodes, 2)
}

func TestRouter_MergeValidation(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv)
	base := srv.URL + "/api/v1/sessions/" + sessionID

	status, env := doJSON(t, http.MethodPost, base+"/merge", map[string]interface{}{
		"nodeIds":  []string{"only-one"},
		"newLabel": "too few",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestRouter_UnknownSession(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/v1/sessions/no-such-session"

	for _, probe := range []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/deltas", map[string]interface{}{"nodes": []string{}}},
		{http.MethodPost, "/finalize", nil},
		{http.MethodGet, "/graph", nil},
	} {
		status, env := doJSON(t, probe.method, base+probe.path, probe.body)
		assert.Equal(t, http.StatusNotFound, status, probe.path)
		require.NotNil(t, env.Error, probe.path)
		assert.Equal(t, "NOT_FOUND", env.Error.Code, probe.path)
	}
}

func TestRouter_GraphManagement(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv)
	base := srv.URL + "/api/v1/sessions/" + sessionID

	status, env := doJSON(t, http.MethodPost, base+"/deltas", map[string]interface{}{
		"nodes": []map[string]string{{"label": "victim"}, {"label": "survivor"}},
		"edges": []map[string]string{{"source": "victim", "target": "survivor"}},
	})
	require.Equal(t, http.StatusOK, status)

	var report struct {
		AddedNodes []struct {
			ID string `json:"id"`
		} `json:"addedNodes"`
		AddedEdges []struct {
			ID string `json:"id"`
		} `json:"addedEdges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))

	status, _ = doJSON(t, http.MethodDelete, base+"/edges/"+report.AddedEdges[0].ID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodDelete, base+"/edges/"+report.AddedEdges[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodDelete, base+"/nodes/"+report.AddedNodes[0].ID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodDelete, base+"/nodes/no-such-node", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Wholesale replacement.
	status, env = doJSON(t, http.MethodPut, base+"/graph", map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "n1", "label": "replacement root"},
			{"id": "n2", "label": "replacement child"},
		},
		"edges": []map[string]interface{}{
			{"source": "n1", "target": "n2", "relationship": "contains"},
		},
	})
	require.Equal(t, http.StatusOK, status)

	var snapshot struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Len(t, snapshot.Nodes, 2)
	assert.Len(t, snapshot.Edges, 1)

	status, _ = doJSON(t, http.MethodDelete, base+"/graph", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, http.MethodGet, base+"/graph", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Empty(t, snapshot.Nodes)
}
