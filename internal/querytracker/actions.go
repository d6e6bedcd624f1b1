package querytracker

import (
	"context"
	"fmt"
	"log/slog"
)

// Toaster names and titles used by the lifecycle procedures.
var (
	loadToast  = ToastOptions{Name: "load_query", ErrorTitle: "Failed to load query", SkipSuccessToast: true}
	startToast = ToastOptions{Name: "start_query", ErrorTitle: "Failed to start query", SkipSuccessToast: true}
	abortToast = ToastOptions{Name: "abort_query", ErrorTitle: "Failed to abort query", SkipSuccessToast: true}
)

// Controller runs the query lifecycle procedures against one Store.
type Controller struct {
	cluster   string
	api       API
	store     *Store
	navigator Navigator
	list      ListRefresher
	toaster   Toaster
	logger    *slog.Logger
}

// ControllerConfig holds the collaborators of a Controller.
type ControllerConfig struct {
	Cluster   string
	API       API
	Store     *Store
	Navigator Navigator
	List      ListRefresher
	Toaster   Toaster
	Logger    *slog.Logger
}

// NewController creates a Controller. Navigator, List and Toaster are optional.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		cluster:   cfg.Cluster,
		api:       cfg.API,
		store:     cfg.Store,
		navigator: cfg.Navigator,
		list:      cfg.List,
		toaster:   cfg.Toaster,
		logger:    logger.With("cluster", cfg.Cluster),
	}
}

// Store returns the controller's store.
func (c *Controller) Store() *Store {
	return c.store
}

// Init loads queryID when given, otherwise starts an empty query from the
// store's deep-link params.
func (c *Controller) Init(ctx context.Context, queryID string) {
	if queryID != "" {
		c.LoadQuery(ctx, queryID)
		return
	}
	params := c.store.State().Params
	engine, err := ParseEngine(params.Engine)
	if err != nil {
		c.logger.Warn("ignoring engine from params", "error", err)
		engine = DefaultEngine
	}
	c.CreateEmptyQuery(engine, params.Query)
}

// LoadQuery fetches the query and makes it current. Any failure falls back
// to an empty query; the error only reaches the toaster.
func (c *Controller) LoadQuery(ctx context.Context, queryID string) {
	c.store.Dispatch(LoadStarted{})

	item, err := WrapByToaster(ctx, c.toaster, loadToast, func(ctx context.Context) (*QueryItem, error) {
		return c.api.GetQuery(ctx, queryID)
	})
	if err != nil {
		c.logger.Debug("load query failed, starting empty query", "query_id", queryID, "error", err)
		c.CreateEmptyQuery(DefaultEngine, "")
		return
	}

	c.store.Dispatch(QuerySet{Item: item})
}

// CreateEmptyQuery makes a fresh, unsaved query current.
func (c *Controller) CreateEmptyQuery(engine Engine, query string) {
	if engine == "" {
		engine = DefaultEngine
	}
	c.store.Dispatch(QuerySet{Item: &QueryItem{
		Query:    query,
		Engine:   engine,
		Settings: Settings{},
	}})
}

// PatchDraft merges patch into the draft.
func (c *Controller) PatchDraft(patch DraftPatch) State {
	return c.store.Dispatch(DraftPatched{Patch: patch})
}

// RunQuery starts the current draft, navigates to it and refreshes the
// queries list. The start error is returned to the caller.
func (c *Controller) RunQuery(ctx context.Context) (string, error) {
	draft := c.store.Draft()

	res, err := WrapByToaster(ctx, c.toaster, startToast, func(ctx context.Context) (*StartQueryResult, error) {
		return c.api.StartQuery(ctx, draft)
	})
	if err != nil {
		return "", fmt.Errorf("start query: %w", err)
	}

	c.GoToQuery(res.QueryID)
	c.refreshList(ctx)
	return res.QueryID, nil
}

// AbortCurrentQuery aborts the current query, reloads it and refreshes the
// queries list. Without a current submitted query it does nothing.
func (c *Controller) AbortCurrentQuery(ctx context.Context) error {
	current := c.store.CurrentQuery()
	if current == nil || current.ID == "" {
		return nil
	}
	id := current.ID

	_, err := WrapByToaster(ctx, c.toaster, abortToast, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.api.AbortQuery(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("abort query %s: %w", id, err)
	}

	c.LoadQuery(ctx, id)
	c.refreshList(ctx)
	return nil
}

// GoToQuery navigates to the console page of the query.
func (c *Controller) GoToQuery(queryID string) {
	if c.navigator == nil {
		return
	}
	c.navigator.Push(CreateQueryURL(c.cluster, queryID))
}

func (c *Controller) refreshList(ctx context.Context) {
	if c.list == nil {
		return
	}
	if err := c.list.Refresh(ctx); err != nil {
		c.logger.Warn("failed to refresh queries list", "error", err)
	}
}
