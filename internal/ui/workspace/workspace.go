// Package workspace keeps the per-browser query workspaces of the UI server.
// A workspace is the composition root of the query lifecycle for one browser
// session on one cluster: it owns the store, the controller and their
// collaborators.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/ui/notifier"
)

// DefaultListLimit is the page size of the queries list.
const DefaultListLimit = 20

// ErrUnknownCluster is returned for a cluster missing from the configuration.
var ErrUnknownCluster = errors.New("unknown cluster")

// Workspace is one session's view of a cluster.
type Workspace struct {
	Cluster    config.ClusterConfig
	Store      *querytracker.Store
	Controller *querytracker.Controller
	History    *querytracker.History
	List       *querytracker.QueriesList
	Toasts     *ToastLog
	Notifier   *notifier.Notifier
}

// APIFactory builds the query tracker client of a cluster.
type APIFactory func(cluster config.ClusterConfig) querytracker.API

type key struct {
	session string
	cluster string
}

// Registry creates and caches workspaces.
type Registry struct {
	clusters *config.ClusterSet
	newAPI   APIFactory
	logger   *slog.Logger

	mu         sync.Mutex
	workspaces map[key]*Workspace
}

// NewRegistry creates a Registry.
func NewRegistry(clusters *config.ClusterSet, newAPI APIFactory, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		clusters:   clusters,
		newAPI:     newAPI,
		logger:     logger,
		workspaces: make(map[key]*Workspace),
	}
}

// Get returns the workspace of the session on the cluster, creating it with
// params on first use. The second result reports whether it was created.
func (r *Registry) Get(session, clusterID string, params querytracker.Params) (*Workspace, bool, error) {
	cluster, ok := r.clusters.Get(clusterID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownCluster, clusterID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{session: session, cluster: clusterID}
	if ws, ok := r.workspaces[k]; ok {
		return ws, false, nil
	}

	ws := r.build(cluster, params)
	r.workspaces[k] = ws
	r.logger.Debug("workspace created", "cluster", clusterID, "session", session)
	return ws, true, nil
}

func (r *Registry) build(cluster config.ClusterConfig, params querytracker.Params) *Workspace {
	n := notifier.New()
	api := r.newAPI(cluster)
	logger := r.logger.With("cluster", cluster.ID)

	ws := &Workspace{
		Cluster:  cluster,
		Store:    querytracker.NewStore(params, querytracker.WithOnChange(func(querytracker.State) { n.Publish(notifier.StateChanged) })),
		History:  querytracker.NewHistory(),
		List:     querytracker.NewQueriesList(api, querytracker.ListParams{Limit: DefaultListLimit}),
		Toasts:   NewToastLog(logger, func() { n.Publish(notifier.ToastsChanged) }),
		Notifier: n,
	}
	ws.List.OnChange(func() { n.Publish(notifier.ListChanged) })
	ws.Controller = querytracker.NewController(querytracker.ControllerConfig{
		Cluster:   cluster.ID,
		API:       api,
		Store:     ws.Store,
		Navigator: ws.History,
		List:      ws.List,
		Toaster:   ws.Toasts,
		Logger:    logger,
	})
	return ws
}

// Init makes sure the workspace has a current query: it loads queryID when
// given, and otherwise starts from the deep-link params if nothing is loaded yet.
func (ws *Workspace) Init(ctx context.Context, queryID string) {
	if queryID == "" && ws.Store.State().Lifecycle != querytracker.LifecycleInit {
		return
	}
	ws.Controller.Init(ctx, queryID)
}

// Prune drops the workspaces of clusters that are no longer configured or
// whose configuration changed, closing their notifiers so open update streams
// end. It returns the number of dropped workspaces.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for k, ws := range r.workspaces {
		current, ok := r.clusters.Get(k.cluster)
		if ok && sameCluster(current, ws.Cluster) {
			continue
		}
		delete(r.workspaces, k)
		ws.Notifier.Close()
		dropped++
	}
	return dropped
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

func sameCluster(a, b config.ClusterConfig) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Proxy != b.Proxy || a.Secure != b.Secure || a.QueryTrackerStage != b.QueryTrackerStage {
		return false
	}
	return maps.Equal(a.AuthHeaders, b.AuthHeaders)
}
