package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytsaurus/ytconsole/internal/clusterinfo"
	"github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/testutil"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

type noAPI struct{}

func (noAPI) GetQuery(context.Context, string) (*querytracker.QueryItem, error) { return nil, assert.AnError }
func (noAPI) StartQuery(context.Context, querytracker.DraftQuery) (*querytracker.StartQueryResult, error) {
	return nil, assert.AnError
}
func (noAPI) AbortQuery(context.Context, string) error { return assert.AnError }
func (noAPI) ListQueries(context.Context, querytracker.ListParams) ([]querytracker.QueryItem, error) {
	return nil, assert.AnError
}

func writeClusters(t *testing.T, path, proxy string) {
	t.Helper()
	content := "clusters:\n  hahn:\n    proxy: " + proxy + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func newTestServer(t *testing.T, clustersFile string) (*Server, *config.ClusterSet, *workspace.Registry) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	clusters := config.NewClusterSet(map[string]config.ClusterConfig{
		"hahn": {ID: "hahn", Name: "hahn", Proxy: "old.example.net", QueryTrackerStage: config.DefaultQueryTrackerStage},
	})
	registry := workspace.NewRegistry(clusters, func(config.ClusterConfig) querytracker.API { return noAPI{} }, logger)
	srv := NewServer(Config{
		Clusters:      clusters,
		ClustersFile:  clustersFile,
		InlineClusters: map[string]config.ClusterConfig{
			"markov": {ID: "markov", Name: "markov", Proxy: "markov.example.net"},
		},
		Fetcher:       clusterinfo.NewFetcher(0, clusterinfo.WithLogger(logger)),
		Registry:      registry,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        logger,
	})
	return srv, clusters, registry
}

func TestHandler_Routes(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	h, err := srv.Handler()
	require.NoError(t, err)

	tests := []struct {
		target string
		want   int
	}{
		{"/healthz", http.StatusOK},
		{"/api/clusters", http.StatusOK},
		{"/api/clusters/hahn/queries/state", http.StatusOK},
		{"/api/clusters/nope/queries/state", http.StatusNotFound},
		{"/api/telemetry/requests", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReloadClusters(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ClustersFileName)
	srv, clusters, registry := newTestServer(t, path)

	_, _, err := registry.Get("s", "hahn", querytracker.Params{})
	require.NoError(t, err)

	writeClusters(t, path, "new.example.net")
	srv.reloadClusters()

	got, ok := clusters.Get("hahn")
	require.True(t, ok)
	assert.Equal(t, "new.example.net", got.Proxy)
	assert.Equal(t, []string{"hahn", "markov"}, clusters.IDs(), "inline clusters survive a reload")
	assert.Equal(t, 0, registry.Len(), "workspaces of changed clusters are dropped")

	// A broken file keeps the previous set.
	require.NoError(t, os.WriteFile(path, []byte("clusters:\n  hahn:\n    proxy: http://bad\n"), 0600))
	srv.reloadClusters()
	got, _ = clusters.Get("hahn")
	assert.Equal(t, "new.example.net", got.Proxy)
}
