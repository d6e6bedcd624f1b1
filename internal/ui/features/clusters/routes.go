// Package clusters provides the cluster list and cluster-info endpoints.
package clusters

import (
	"github.com/go-chi/chi/v5"

	"github.com/ytsaurus/ytconsole/internal/config"
)

// SetupRoutes registers the clusters feature routes.
func SetupRoutes(router chi.Router, clusters *config.ClusterSet, fetcher InfoFetcher) error {
	handlers := NewHandlers(clusters, fetcher)

	// Flat routes: /api/clusters/{cluster}/queries is mounted by the queries feature.
	router.Get("/api/clusters", handlers.List)
	router.Get("/api/clusters/versions", handlers.Versions)
	router.Get("/api/clusters/{cluster}/info", handlers.Info)

	return nil
}
