package queries

import (
	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

// StateResponse is the workspace state sent to the UI.
type StateResponse struct {
	querytracker.State
	Location string `json:"location,omitempty"`
}

// NewQuerySignals are the fields of a new empty query.
type NewQuerySignals struct {
	Engine string `json:"engine"`
	Query  string `json:"query"`
}

// DraftSignals is a partial draft. Absent fields are left as they are.
type DraftSignals struct {
	Query    *string               `json:"query"`
	Engine   *string               `json:"engine"`
	Settings querytracker.Settings `json:"settings"`
}

// ValidationResponse lists inline field errors of a rejected draft patch.
type ValidationResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// RunResponse is returned after a query was started.
type RunResponse struct {
	QueryID  string `json:"query_id"`
	Location string `json:"location"`
}

// ListResponse is the refreshed queries list.
type ListResponse struct {
	Items []querytracker.QueryItem `json:"items"`
	State querytracker.Lifecycle   `json:"state"`
}

// UpdateSignals are pushed over SSE after workspace changes. Only the parts
// that changed are set.
type UpdateSignals struct {
	QueryState *StateResponse    `json:"queryState,omitempty"`
	Queries    *ListResponse     `json:"queries,omitempty"`
	Toasts     []workspace.Toast `json:"toasts,omitempty"`
	// Closed tells the page to reconnect: the workspace was dropped.
	Closed bool `json:"workspaceClosed,omitempty"`
}
