package querytracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cluster := config.ClusterConfig{
		ID:          "hahn",
		Proxy:       strings.TrimPrefix(srv.URL, "http://"),
		AuthHeaders: map[string]string{"Authorization": "OAuth secret"},
	}
	return NewClient(cluster, time.Second, opts...)
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestClient_GetQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v4/get_query", r.URL.Path)
		assert.Equal(t, "OAuth secret", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get(apierr.CorrelationHeader))

		body := decodeRequest(t, r)
		assert.Equal(t, "q1", body["query_id"])
		assert.Equal(t, "production", body["stage"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"q1","query":"SELECT 1","engine":"chyt","settings":{"cluster":"ch"},"state":"completed","user":"root"}`))
	}, WithCorrelation(func(context.Context) string { return "req-1" }))

	item, err := client.GetQuery(context.Background(), "q1")
	require.NoError(t, err)

	assert.Equal(t, "q1", item.ID)
	assert.Equal(t, EngineCHYT, item.Engine)
	assert.Equal(t, Settings{"cluster": "ch"}, item.Settings)
	assert.Equal(t, StatusCompleted, item.State)
	assert.Equal(t, "root", item.User)
}

func TestClient_StartQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/start_query", r.URL.Path)
		body := decodeRequest(t, r)
		assert.Equal(t, "yql", body["engine"])
		assert.Equal(t, "SELECT 42", body["query"])
		assert.Equal(t, map[string]any{}, body["settings"])
		_, _ = w.Write([]byte(`{"query_id":"new"}`))
	})

	res, err := client.StartQuery(context.Background(), DraftQuery{Query: "SELECT 42", Engine: EngineYQL})
	require.NoError(t, err)
	assert.Equal(t, "new", res.QueryID)
}

func TestClient_StartQueryEmptyID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.StartQuery(context.Background(), DefaultDraft())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query_id")
}

func TestClient_AbortQueryIgnoresBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/abort_query", r.URL.Path)
		_, _ = w.Write([]byte(`not json at all`))
	})

	require.NoError(t, client.AbortQuery(context.Background(), "q1"))
}

func TestClient_ListQueries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		assert.Equal(t, "root", body["user"])
		assert.Equal(t, float64(5), body["limit"])
		_, hasEngine := body["engine"]
		assert.False(t, hasEngine)
		_, _ = w.Write([]byte(`{"queries":[{"id":"a"},{"id":"b"}],"incomplete":true}`))
	})

	items, err := client.ListQueries(context.Background(), ListParams{User: "root", Limit: 5})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
}

func TestClient_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such query","code":1}`))
	})

	_, err := client.GetQuery(context.Background(), "missing")
	require.Error(t, err)

	var httpErr *apierr.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, map[string]any{"message": "no such query", "code": float64(1)}, httpErr.Body)
}

func TestClient_TransportError(t *testing.T) {
	client := NewClient(config.ClusterConfig{ID: "x", Proxy: "127.0.0.1:1"}, 200*time.Millisecond)

	err := client.AbortQuery(context.Background(), "q")
	require.Error(t, err)

	var httpErr *apierr.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Zero(t, httpErr.Status)
	assert.NotNil(t, httpErr.Err)
}

func TestClient_String(t *testing.T) {
	client := NewClient(config.ClusterConfig{ID: "x", Proxy: "hahn.yt.example.net", Secure: true, QueryTrackerStage: "testing"}, 0)
	assert.Equal(t, "hahn.yt.example.net (testing)", client.String())
}
