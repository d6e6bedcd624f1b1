package clusters

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ytsaurus/ytconsole/internal/clusterinfo"
	"github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the clusters feature.
type Handlers struct {
	clusters *config.ClusterSet
	fetcher  InfoFetcher
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(clusters *config.ClusterSet, fetcher InfoFetcher) *Handlers {
	return &Handlers{clusters: clusters, fetcher: fetcher}
}

// List returns the configured clusters sorted by id.
func (h *Handlers) List(w http.ResponseWriter, _ *http.Request) {
	all := h.clusters.All()
	items := make([]ClusterItem, 0, len(all))
	for _, id := range h.clusters.IDs() {
		c := all[id]
		items = append(items, ClusterItem{ID: c.ID, Name: c.Name, Proxy: c.Proxy, Secure: c.Secure})
	}
	common.WriteJSON(w, http.StatusOK, items)
}

// Versions returns the version of every cluster. Unreachable clusters are
// listed without version.
func (h *Handlers) Versions(w http.ResponseWriter, r *http.Request) {
	versions := h.fetcher.GetVersions(r.Context(), requestOf(r), h.clusters.All())
	common.WriteJSON(w, http.StatusOK, versions)
}

// Info returns the XSRF token and version of a cluster. Upstream failures
// are reported inside the body, never as an error status.
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cluster")
	cluster, ok := h.clusters.Get(id)
	if !ok {
		common.WriteMessage(w, http.StatusNotFound, "unknown cluster "+id)
		return
	}

	info := h.fetcher.GetClusterInfo(r.Context(), requestOf(r), clusterinfo.NewUserSetup(cluster))
	common.WriteJSON(w, http.StatusOK, info)
}

func requestOf(r *http.Request) clusterinfo.Request {
	return clusterinfo.Request{
		ID:      middleware.GetReqID(r.Context()),
		Referer: r.Referer(),
	}
}
