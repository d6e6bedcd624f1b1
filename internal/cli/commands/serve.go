package commands

import (
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	sharedcfg "github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/ui"
	telemetryFeature "github.com/ytsaurus/ytconsole/internal/ui/features/telemetry"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console web server",
		Long: `Start the console server.

The server provides:
- Cluster list, versions and per-cluster info (XSRF token + version)
- Query workspaces per browser session: load, draft, run and abort queries
- Live state updates over server-sent events
- Recorded request stats

With a clusters file configured, edits to it are picked up without a restart.`,
		Example: `  # Start on the configured address
  ytconsole serve

  # Start on a custom port without watching the clusters file
  ytconsole serve --port 3000 --watch=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	// Flag values reach the config through the loader; the defaults here
	// only document them.
	cmd.Flags().String("host", "", "Interface to listen on (default: 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("watch", true, "Reload the clusters file when it changes")
	cmd.Flags().String("session-secret", "", "Secret signing the session cookie (default: random per start)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cc.Cfg
	logger := cc.Logger

	if len(cfg.Clusters) == 0 {
		cc.Renderer.Warning("No clusters configured; define them under clusters: or in a clusters file")
	}

	store, sink, cleanup, err := openTelemetry(cc)
	if err != nil {
		return err
	}
	defer cleanup()

	clusters := sharedcfg.NewClusterSet(cfg.Clusters)
	registry := workspace.NewRegistry(clusters, func(c sharedcfg.ClusterConfig) querytracker.API {
		return newQueryAPI(cfg, c)
	}, logger)

	// A nil *SQLiteStore must not become a non-nil interface.
	var stats telemetryFeature.StatsLister
	if store != nil {
		stats = store
	}

	secret := cfg.Server.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Debug("using a random session secret; sessions end with the process")
	}

	server := ui.NewServer(ui.Config{
		Clusters:       clusters,
		ClustersFile:   cfg.ClustersFile,
		InlineClusters: cfg.InlineClusters(),
		Fetcher:        newFetcher(cc, sink),
		Registry:       registry,
		Stats:          stats,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Watch:          cfg.Server.Watch,
		SessionSecret:  secret,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	cc.Renderer.Printf("Starting console server on http://%s\n", addr)
	cc.Renderer.Muted("Press Ctrl+C to stop")

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
