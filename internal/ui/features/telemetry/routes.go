// Package telemetry exposes the recorded request stats.
package telemetry

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the telemetry feature routes. A nil lister disables them.
func SetupRoutes(router chi.Router, stats StatsLister) error {
	if stats == nil {
		return nil
	}
	handlers := NewHandlers(stats)

	router.Get("/api/telemetry/requests", handlers.Requests)

	return nil
}
