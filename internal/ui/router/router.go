// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ytsaurus/ytconsole/internal/config"
	clustersFeature "github.com/ytsaurus/ytconsole/internal/ui/features/clusters"
	queriesFeature "github.com/ytsaurus/ytconsole/internal/ui/features/queries"
	telemetryFeature "github.com/ytsaurus/ytconsole/internal/ui/features/telemetry"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

// Deps are the collaborators shared by the feature routes.
type Deps struct {
	Clusters     *config.ClusterSet
	Fetcher      clustersFeature.InfoFetcher
	Registry     *workspace.Registry
	Stats        telemetryFeature.StatsLister // optional
	SessionStore sessions.Store
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Feature routes
	if err := clustersFeature.SetupRoutes(router, deps.Clusters, deps.Fetcher); err != nil {
		return err
	}

	if err := queriesFeature.SetupRoutes(router, deps.Registry, deps.SessionStore, deps.Logger); err != nil {
		return err
	}

	if err := telemetryFeature.SetupRoutes(router, deps.Stats); err != nil {
		return err
	}

	return nil
}
