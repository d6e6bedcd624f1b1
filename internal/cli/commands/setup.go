package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ytsaurus/ytconsole/internal/cli/config"
	"github.com/ytsaurus/ytconsole/internal/cli/output"
	"github.com/ytsaurus/ytconsole/internal/clusterinfo"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/telemetry"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration, loading defaults when the
// root command did not run (e.g. a subcommand executed on its own in tests).
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

type requestIDKey struct{}

// withRequestID tags ctx with a fresh id that roots the correlation ids of
// every request the command makes.
func withRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey{}, uuid.NewString())
}

// requestID returns the id of the HTTP request being served, or the id of
// the CLI invocation.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// newQueryAPI creates the query tracker client of a cluster.
func newQueryAPI(cfg *config.Config, cluster config.ClusterConfig) *querytracker.Client {
	return querytracker.NewClient(cluster, cfg.RequestTimeout, querytracker.WithCorrelation(requestID))
}

// newFetcher creates the cluster-info fetcher recording stats into sink.
func newFetcher(cc *CommandContext, sink telemetry.Sink) *clusterinfo.Fetcher {
	return clusterinfo.NewFetcher(cc.Cfg.RequestTimeout,
		clusterinfo.WithSink(sink),
		clusterinfo.WithLogger(cc.Logger),
	)
}

// openTelemetry opens the stats store when enabled. The returned sink always
// logs; it also persists when the store is open. The cleanup function must be
// called (typically via defer).
func openTelemetry(cc *CommandContext) (*telemetry.SQLiteStore, telemetry.Sink, func(), error) {
	logSink := telemetry.LogSink{Logger: cc.Logger}
	if !cc.Cfg.Telemetry.Enabled {
		return nil, logSink, func() {}, nil
	}

	path := cc.Cfg.Telemetry.DBPath
	if dir := filepath.Dir(path); dir != "." && dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create telemetry directory: %w", err)
		}
	}

	store := telemetry.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			cc.Logger.Warn("failed to close telemetry store", "error", err)
		}
	}
	return store, telemetry.Multi{logSink, store}, cleanup, nil
}

// querySession is the composition root of the query lifecycle for one CLI
// invocation.
type querySession struct {
	controller *querytracker.Controller
	store      *querytracker.Store
	history    *querytracker.History
	list       *querytracker.QueriesList
	toaster    *cliToaster
}

func newQuerySession(cc *CommandContext, cluster config.ClusterConfig, api querytracker.API, params querytracker.ListParams) *querySession {
	s := &querySession{
		store:   querytracker.NewStore(querytracker.Params{}),
		history: querytracker.NewHistory(),
		list:    querytracker.NewQueriesList(api, params),
		toaster: &cliToaster{LogToaster: querytracker.LogToaster{Logger: cc.Logger}},
	}
	s.controller = querytracker.NewController(querytracker.ControllerConfig{
		Cluster:   cluster.ID,
		API:       api,
		Store:     s.store,
		Navigator: s.history,
		List:      s.list,
		Toaster:   s.toaster,
		Logger:    cc.Logger,
	})
	return s
}

// cliToaster logs toasts and keeps the last error so that commands can fail
// with it.
type cliToaster struct {
	querytracker.LogToaster

	mu   sync.Mutex
	last error
}

// Error implements querytracker.Toaster.
func (t *cliToaster) Error(ctx context.Context, name, title string, err error) {
	t.LogToaster.Error(ctx, name, title, err)
	t.mu.Lock()
	t.last = fmt.Errorf("%s: %w", strings.ToLower(title), err)
	t.mu.Unlock()
}

// Err returns the last reported error, or nil.
func (t *cliToaster) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
