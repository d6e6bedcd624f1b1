package telemetry

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ytsaurus/ytconsole/internal/telemetry"
	"github.com/ytsaurus/ytconsole/internal/ui/features/common"
)

// StatsLister reads recorded stats.
type StatsLister interface {
	ListStats(ctx context.Context, filter telemetry.ListFilter) ([]telemetry.StoredRecord, error)
}

// Handlers provides HTTP handlers for the telemetry feature.
type Handlers struct {
	stats StatsLister
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(stats StatsLister) *Handlers {
	return &Handlers{stats: stats}
}

// Requests lists recent ytRequests stats, newest first.
// Query parameters: service (cluster id) and limit.
func (h *Handlers) Requests(w http.ResponseWriter, r *http.Request) {
	filter := telemetry.ListFilter{Service: r.URL.Query().Get("service")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			common.WriteMessage(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	records, err := h.stats.ListStats(r.Context(), filter)
	if err != nil {
		common.WriteError(w, "Failed to list request stats ", err, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []telemetry.StoredRecord{}
	}
	common.WriteJSON(w, http.StatusOK, records)
}
