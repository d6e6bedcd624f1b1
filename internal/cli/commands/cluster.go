package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/clusterinfo"
	"github.com/ytsaurus/ytconsole/internal/telemetry"
)

// NewClusterInfoCommand creates the cluster-info command.
func NewClusterInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster-info <cluster>",
		Short: "Show the XSRF token and version of a cluster",
		Long: `Fetch the user's XSRF token and the cluster version concurrently.

A failure of one part never hides the other: each error is reported next to
the part that failed. The command fails only when both parts fail.`,
		Example: `  ytconsole cluster-info hahn
  ytconsole cluster-info hahn -o json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeClusters,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClusterInfo(cmd, args[0])
		},
	}
	return cmd
}

func runClusterInfo(cmd *cobra.Command, clusterID string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cluster, err := cc.Cfg.Cluster(clusterID)
	if err != nil {
		return err
	}

	_, sink, cleanup, err := openTelemetry(cc)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := withRequestID(cmd.Context())
	req := clusterinfo.Request{ID: requestID(ctx)}
	info := newFetcher(cc, sink).GetClusterInfo(ctx, req, clusterinfo.NewUserSetup(cluster))

	r := cc.Renderer
	if err := r.Render(info, func() {
		styles := r.Styles()
		r.Header(1, "Cluster "+cluster.ID)
		switch {
		case info.Version != nil:
			r.Printf("  %s: %s\n", styles.Bold.Render("Version"), *info.Version)
		case info.VersionError != nil:
			r.Printf("  %s: %s\n", styles.Bold.Render("Version"), styles.Error.Render(info.VersionError.Message))
		}
		switch {
		case info.Token != nil:
			r.Printf("  %s: %s\n", styles.Bold.Render("Login"), info.Token.Login)
			r.Printf("  %s: %s\n", styles.Bold.Render("CSRF token"), info.Token.CSRFToken)
		case info.TokenError != nil:
			r.Printf("  %s: %s\n", styles.Bold.Render("Token"), styles.Error.Render(info.TokenError.Message))
		}
	}); err != nil {
		return err
	}

	if info.VersionError != nil && info.TokenError != nil {
		return fmt.Errorf("cluster %s is unreachable: %s", cluster.ID, errorSummary(info.VersionError))
	}
	return nil
}

func errorSummary(e *apierr.ErrorInfo) string {
	if code := e.Code; code != nil {
		return fmt.Sprintf("status %d", *code)
	}
	return e.Message
}

// NewVersionsCommand creates the versions command.
func NewVersionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the versions of all configured clusters",
		Long: `Fetch the version of every configured cluster in parallel.

Clusters that do not answer, or answer with an unrecognized version, are
listed without a version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersions(cmd)
		},
	}
	return cmd
}

func runVersions(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ctx := withRequestID(cmd.Context())
	versions := newFetcher(cc, telemetry.LogSink{Logger: cc.Logger}).GetVersions(ctx, clusterinfo.Request{ID: requestID(ctx)}, cc.Cfg.Clusters)

	r := cc.Renderer
	return r.Render(versions, func() {
		rows := make([][]any, 0, len(versions))
		for _, v := range versions {
			rows = append(rows, []any{v.ID, v.Version})
		}
		r.Table([]string{"CLUSTER", "VERSION"}, rows)
	})
}

// completeClusters completes configured cluster ids.
func completeClusters(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := getConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ids := make([]string, 0, len(cfg.Clusters))
	for id := range cfg.Clusters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, cobra.ShellCompDirectiveNoFileComp
}
