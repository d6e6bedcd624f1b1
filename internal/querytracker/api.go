// Package querytracker implements the query tracker lifecycle: the API
// client, the pure state reducer, the store holding the current query and the
// procedures that load, create, run and abort queries.
package querytracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Engine is the execution backend selected for a query.
type Engine string

// Supported engines.
const (
	EngineYQL  Engine = "yql"
	EngineCHYT Engine = "chyt"
	EngineQL   Engine = "ql"
	EngineSPYT Engine = "spyt"
)

// DefaultEngine is used for new queries.
const DefaultEngine = EngineYQL

// Engines lists every supported engine.
var Engines = []Engine{EngineYQL, EngineCHYT, EngineQL, EngineSPYT}

// ParseEngine validates an engine name. Empty input yields DefaultEngine.
func ParseEngine(s string) (Engine, error) {
	if s == "" {
		return DefaultEngine, nil
	}
	e := Engine(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Engines {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown engine %q (available: yql, chyt, ql, spyt)", s)
}

// DisplayName returns a human-readable engine name.
func (e Engine) DisplayName() string {
	switch e {
	case EngineYQL, EngineCHYT, EngineQL, EngineSPYT:
		return strings.ToUpper(string(e))
	case "":
		return ""
	}
	return cases.Title(language.English).String(string(e))
}

// QueryStatus is the tracker-side state of a submitted query.
type QueryStatus string

// Query statuses reported by the tracker.
const (
	StatusDraft      QueryStatus = "draft"
	StatusPending    QueryStatus = "pending"
	StatusRunning    QueryStatus = "running"
	StatusCompleting QueryStatus = "completing"
	StatusCompleted  QueryStatus = "completed"
	StatusAborting   QueryStatus = "aborting"
	StatusAborted    QueryStatus = "aborted"
	StatusFailing    QueryStatus = "failing"
	StatusFailed     QueryStatus = "failed"
)

// Settings holds engine-specific options.
type Settings map[string]any

// Clone returns a shallow copy that is never nil.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// QueryItem identifies a submitted query.
type QueryItem struct {
	ID          string         `json:"id" yaml:"id"`
	Query       string         `json:"query" yaml:"query"`
	Engine      Engine         `json:"engine" yaml:"engine"`
	Settings    Settings       `json:"settings" yaml:"settings"`
	State       QueryStatus    `json:"state,omitempty" yaml:"state,omitempty"`
	User        string         `json:"user,omitempty" yaml:"user,omitempty"`
	StartTime   *time.Time     `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	FinishTime  *time.Time     `json:"finish_time,omitempty" yaml:"finish_time,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// DraftQuery is the editable, not yet submitted query.
type DraftQuery struct {
	Query    string   `json:"query" yaml:"query"`
	Engine   Engine   `json:"engine" yaml:"engine"`
	Settings Settings `json:"settings" yaml:"settings"`
}

// StartQueryResult is returned by StartQuery.
type StartQueryResult struct {
	QueryID string `json:"query_id"`
}

// ListParams narrows ListQueries.
type ListParams struct {
	User   string
	Engine Engine
	State  QueryStatus
	Filter string
	Limit  int
}

// API is the query tracker contract the lifecycle depends on.
// Implementations return *apierr.HTTPError on transport or HTTP failure and never retry.
type API interface {
	GetQuery(ctx context.Context, id string) (*QueryItem, error)
	StartQuery(ctx context.Context, draft DraftQuery) (*StartQueryResult, error)
	AbortQuery(ctx context.Context, id string) error
	ListQueries(ctx context.Context, params ListParams) ([]QueryItem, error)
}
