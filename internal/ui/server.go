// Package ui provides the web console server: cluster information, the
// query workspace API and live updates.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/ytsaurus/ytconsole/internal/config"
	clustersFeature "github.com/ytsaurus/ytconsole/internal/ui/features/clusters"
	telemetryFeature "github.com/ytsaurus/ytconsole/internal/ui/features/telemetry"
	"github.com/ytsaurus/ytconsole/internal/ui/router"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

const reloadDebounce = 100 * time.Millisecond

// Server is the console server.
type Server struct {
	clusters     *config.ClusterSet
	clustersFile string
	inline       map[string]config.ClusterConfig
	fetcher      clustersFeature.InfoFetcher
	registry     *workspace.Registry
	stats        telemetryFeature.StatsLister
	sessionStore *sessions.CookieStore
	host         string
	port         int
	watch        bool
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Clusters     *config.ClusterSet
	ClustersFile string // reloaded on change when Watch is set
	// InlineClusters are kept on reload; clusters file entries win over them
	InlineClusters map[string]config.ClusterConfig

	Fetcher       clustersFeature.InfoFetcher
	Registry      *workspace.Registry
	Stats         telemetryFeature.StatsLister
	Host          string
	Port          int
	Watch         bool
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		clusters:     cfg.Clusters,
		clustersFile: cfg.ClustersFile,
		inline:       cfg.InlineClusters,
		fetcher:      cfg.Fetcher,
		registry:     cfg.Registry,
		stats:        cfg.Stats,
		sessionStore: sessionStore,
		host:         cfg.Host,
		port:         cfg.Port,
		watch:        cfg.Watch,
		logger:       logger,
	}
}

// Handler builds the HTTP handler with middleware and all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Clusters:     s.clusters,
		Fetcher:      s.fetcher,
		Registry:     s.registry,
		Stats:        s.stats,
		SessionStore: s.sessionStore,
		Logger:       s.logger,
	}
	if err := router.SetupRoutes(r, deps); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	s.logger.Info("starting console server", "addr", "http://"+addr, "clusters", len(s.clusters.IDs()))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start clusters file watcher if enabled
	if s.watch && s.clustersFile != "" {
		eg.Go(func() error {
			return s.watchClusters(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down console server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchClusters reloads the clusters file when it changes. The directory is
// watched so that editors replacing the file are noticed too.
func (s *Server) watchClusters(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.clustersFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch clusters file", "path", target, "error", err)
		// Don't fail - continue without watching
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, s.reloadClusters)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reloadClusters re-reads the clusters file. A broken file keeps the
// previous clusters.
func (s *Server) reloadClusters() {
	fromFile, err := config.LoadClustersFile(s.clustersFile)
	if err != nil {
		s.logger.Error("failed to reload clusters, keeping previous set", "path", s.clustersFile, "error", err)
		return
	}
	clusters := maps.Clone(s.inline)
	if clusters == nil {
		clusters = make(map[string]config.ClusterConfig, len(fromFile))
	}
	maps.Copy(clusters, fromFile)
	s.clusters.Replace(clusters)
	dropped := 0
	if s.registry != nil {
		dropped = s.registry.Prune()
	}
	s.logger.Info("clusters reloaded", "clusters", len(clusters), "dropped_workspaces", dropped)
}
