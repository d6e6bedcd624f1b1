// Package queries provides the query workspace endpoints: state, draft
// editing, running and aborting queries, the queries list and live updates.
package queries

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

// SetupRoutes registers the queries feature routes.
func SetupRoutes(
	router chi.Router,
	registry *workspace.Registry,
	sessionStore sessions.Store,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(registry, sessionStore, logger)

	router.Route("/api/clusters/{cluster}/queries", func(r chi.Router) {
		r.Get("/state", handlers.State)
		r.Get("/updates", handlers.Updates)
		r.Post("/load/{id}", handlers.Load)
		r.Post("/new", handlers.New)
		r.Patch("/draft", handlers.PatchDraft)
		r.Post("/run", handlers.Run)
		r.Post("/abort", handlers.Abort)
		r.Get("/list", handlers.List)
		r.Get("/toasts", handlers.Toasts)
	})

	// Navigation target of a started query.
	router.Get("/{cluster}/queries/{id}", handlers.QueryPage)

	return nil
}
