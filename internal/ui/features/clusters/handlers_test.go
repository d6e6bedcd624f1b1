package clusters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/clusterinfo"
	"github.com/ytsaurus/ytconsole/internal/config"
)

type stubFetcher struct {
	gotReq     clusterinfo.Request
	gotSetup   clusterinfo.UserSetup
	info       clusterinfo.Info
	versions   []clusterinfo.ClusterVersion
	gotCluster []string
}

func (s *stubFetcher) GetClusterInfo(_ context.Context, req clusterinfo.Request, setup clusterinfo.UserSetup) clusterinfo.Info {
	s.gotReq = req
	s.gotSetup = setup
	return s.info
}

func (s *stubFetcher) GetVersions(_ context.Context, _ clusterinfo.Request, clusters map[string]config.ClusterConfig) []clusterinfo.ClusterVersion {
	for id := range clusters {
		s.gotCluster = append(s.gotCluster, id)
	}
	return s.versions
}

func setupRouter(t *testing.T, fetcher *stubFetcher) http.Handler {
	t.Helper()
	clusters := config.NewClusterSet(map[string]config.ClusterConfig{
		"hahn":  {ID: "hahn", Name: "Hahn", Proxy: "hahn.example.net", Secure: true},
		"freud": {ID: "freud", Name: "Freud", Proxy: "freud.example.net"},
	})
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	require.NoError(t, SetupRoutes(r, clusters, fetcher))
	return r
}

func TestList(t *testing.T) {
	h := setupRouter(t, &stubFetcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clusters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var items []ClusterItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "freud", items[0].ID)
	assert.Equal(t, ClusterItem{ID: "hahn", Name: "Hahn", Proxy: "hahn.example.net", Secure: true}, items[1])
}

func TestInfo(t *testing.T) {
	version := "23.1.0"
	code := 503
	fetcher := &stubFetcher{info: clusterinfo.Info{
		Version:    &version,
		TokenError: &apierr.ErrorInfo{Message: "Failed to get XSRF token :boom", Code: &code, InnerErrors: []any{}},
	}}
	h := setupRouter(t, fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/clusters/hahn/info", nil)
	req.Header.Set("Referer", "http://console/hahn")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "branch failures stay in the body")
	assert.JSONEq(t, `{
		"version": "23.1.0",
		"tokenError": {"message": "Failed to get XSRF token :boom", "code": 503, "inner_errors": []}
	}`, rec.Body.String())

	assert.Equal(t, "hahn", fetcher.gotSetup.Cluster.ID)
	assert.Equal(t, "https://hahn.example.net", fetcher.gotSetup.ProxyBaseURL)
	assert.NotEmpty(t, fetcher.gotReq.ID, "request id comes from the middleware")
	assert.Equal(t, "http://console/hahn", fetcher.gotReq.Referer)
}

func TestInfo_UnknownCluster(t *testing.T) {
	h := setupRouter(t, &stubFetcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clusters/nope/info", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown cluster nope")
}

func TestVersions(t *testing.T) {
	fetcher := &stubFetcher{versions: []clusterinfo.ClusterVersion{{ID: "freud"}, {ID: "hahn", Version: "24.1.0"}}}
	h := setupRouter(t, fetcher)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clusters/versions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"freud"},{"id":"hahn","version":"24.1.0"}]`, rec.Body.String())
	assert.ElementsMatch(t, []string{"hahn", "freud"}, fetcher.gotCluster)
}
