package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytsaurus/ytconsole/internal/cli/config"
	"github.com/ytsaurus/ytconsole/internal/cli/output"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Work with the query tracker of a cluster",
		Long: `Load, start, abort and list queries of a cluster's query tracker.

Every subcommand takes the cluster id as its first argument. Without further
arguments "query repl" opens an interactive draft editor.`,
		Example: `  # Show a query
  ytconsole query get hahn 5f1c7a2e-...

  # Start a query
  ytconsole query run hahn "SELECT 1" --engine chyt -s row_count_limit=100

  # Read the query from a file, or from stdin with "-"
  ytconsole query run hahn -f report.sql

  # Abort a running query
  ytconsole query abort hahn 5f1c7a2e-...

  # List recent queries
  ytconsole query list hahn --state running --limit 10`,
	}

	cmd.AddCommand(newQueryGetCommand())
	cmd.AddCommand(newQueryRunCommand())
	cmd.AddCommand(newQueryAbortCommand())
	cmd.AddCommand(newQueryListCommand())
	cmd.AddCommand(newQueryREPLCommand())

	return cmd
}

// openQuerySession resolves the cluster and composes a session against its tracker.
func openQuerySession(cmd *cobra.Command, clusterID string, params querytracker.ListParams) (*CommandContext, *querySession, context.Context, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	cluster, err := cc.Cfg.Cluster(clusterID)
	if err != nil {
		return nil, nil, nil, err
	}
	if params.Limit <= 0 {
		params.Limit = cc.Cfg.Query.ListLimit
	}
	s := newQuerySession(cc, cluster, newQueryAPI(cc.Cfg, cluster), params)
	return cc, s, withRequestID(cmd.Context()), nil
}

func newQueryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "get <cluster> <query-id>",
		Short:             "Show a query",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeClusters,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, s, ctx, err := openQuerySession(cmd, args[0], querytracker.ListParams{})
			if err != nil {
				return err
			}
			s.controller.LoadQuery(ctx, args[1])
			if err := s.toaster.Err(); err != nil {
				return err
			}
			return renderQuery(cc.Renderer, s.store.CurrentQuery())
		},
	}
}

// QueryRunOptions holds options for the query run command.
type QueryRunOptions struct {
	File     string
	Settings []string
}

func newQueryRunCommand() *cobra.Command {
	opts := &QueryRunOptions{}
	cmd := &cobra.Command{
		Use:   "run <cluster> [query]",
		Short: "Start a query",
		Long: `Start a query on the cluster's query tracker and print its id.

The query text comes from the argument, from --file, or from stdin when the
file is "-". Settings are given as key=value pairs; numeric settings accept
human-readable values such as "2 GiB" for memory_limit.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeClusters,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryRun(cmd, args, opts)
		},
	}

	cmd.Flags().String("engine", "", "Engine: yql, chyt, ql, spyt (default from query.engine)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", `Read the query from a file ("-" for stdin)`)
	cmd.Flags().StringArrayVarP(&opts.Settings, "setting", "s", nil, "Engine setting as key=value (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("engine", completeEngines)

	return cmd
}

func runQueryRun(cmd *cobra.Command, args []string, opts *QueryRunOptions) error {
	text, err := readQueryText(cmd.InOrStdin(), args[1:], opts.File)
	if err != nil {
		return err
	}
	settings, err := parseSettings(opts.Settings)
	if err != nil {
		return err
	}

	cc, s, ctx, err := openQuerySession(cmd, args[0], querytracker.ListParams{})
	if err != nil {
		return err
	}
	rawEngine := cc.Cfg.Query.Engine
	if cmd.Flags().Changed("engine") {
		rawEngine, _ = cmd.Flags().GetString("engine")
	}
	engine, err := querytracker.ParseEngine(rawEngine)
	if err != nil {
		return err
	}

	s.controller.CreateEmptyQuery(engine, text)
	if len(settings) > 0 {
		s.controller.PatchDraft(querytracker.DraftPatch{Settings: settings})
	}

	id, err := s.controller.RunQuery(ctx)
	if err != nil {
		return err
	}

	result := struct {
		QueryID  string `json:"query_id" yaml:"query_id"`
		Cluster  string `json:"cluster" yaml:"cluster"`
		Location string `json:"location" yaml:"location"`
	}{id, args[0], s.history.Current()}

	r := cc.Renderer
	return r.Render(result, func() {
		r.Success("Started query " + id)
		r.Muted(result.Location)
	})
}

// readQueryText picks the query from args, a file or stdin.
func readQueryText(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("give the query either as an argument or with --file, not both")
	case len(args) > 0:
		return args[0], nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", fmt.Errorf("no query given\nHint: pass it as an argument, or use --file")
}

// parseSettings parses key=value pairs into engine settings.
func parseSettings(pairs []string) (querytracker.Settings, error) {
	settings := querytracker.Settings{}
	var problems []string
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			problems = append(problems, fmt.Sprintf("%q: expected key=value", pair))
			continue
		}
		v, msg := querytracker.ParseSetting(key, strings.TrimSpace(raw))
		if msg != "" {
			problems = append(problems, fmt.Sprintf("%s: %s", key, msg))
			continue
		}
		if v == nil {
			delete(settings, key)
			continue
		}
		settings[key] = v
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings:\n  %s", strings.Join(problems, "\n  "))
	}
	return settings, nil
}

func newQueryAbortCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "abort <cluster> <query-id>",
		Short:             "Abort a query",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeClusters,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, s, ctx, err := openQuerySession(cmd, args[0], querytracker.ListParams{})
			if err != nil {
				return err
			}
			s.controller.LoadQuery(ctx, args[1])
			if err := s.toaster.Err(); err != nil {
				return err
			}
			if err := s.controller.AbortCurrentQuery(ctx); err != nil {
				return err
			}
			return renderQuery(cc.Renderer, s.store.CurrentQuery())
		},
	}
}

// QueryListOptions holds options for the query list command.
type QueryListOptions struct {
	User   string
	State  string
	Filter string
	Limit  int
}

func newQueryListCommand() *cobra.Command {
	opts := &QueryListOptions{}
	cmd := &cobra.Command{
		Use:               "list <cluster>",
		Short:             "List recent queries",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeClusters,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "Only queries of this user")
	cmd.Flags().StringVar(&opts.State, "state", "", "Only queries in this state")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Only queries whose text contains this")
	cmd.Flags().String("engine", "", "Only queries of this engine")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of queries (default from query.list_limit)")
	_ = cmd.RegisterFlagCompletionFunc("engine", completeEngines)

	return cmd
}

func runQueryList(cmd *cobra.Command, clusterID string, opts *QueryListOptions) error {
	params := querytracker.ListParams{
		User:   opts.User,
		State:  querytracker.QueryStatus(opts.State),
		Filter: opts.Filter,
		Limit:  opts.Limit,
	}
	if cmd.Flags().Changed("engine") {
		raw, _ := cmd.Flags().GetString("engine")
		engine, err := querytracker.ParseEngine(raw)
		if err != nil {
			return err
		}
		params.Engine = engine
	}

	cc, s, ctx, err := openQuerySession(cmd, clusterID, params)
	if err != nil {
		return err
	}
	if err := s.list.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}

	items := s.list.Items()
	if items == nil {
		items = []querytracker.QueryItem{}
	}
	r := cc.Renderer
	return r.Render(items, func() {
		styles := r.Styles()
		rows := make([][]any, 0, len(items))
		for _, q := range items {
			started := "-"
			if q.StartTime != nil {
				started = humanize.Time(*q.StartTime)
			}
			rows = append(rows, []any{
				q.ID,
				q.Engine.DisplayName(),
				styles.StatusStyle(string(q.State)).Render(string(q.State)),
				q.User,
				started,
				firstLine(q.Query, 60),
			})
		}
		r.Table([]string{"ID", "ENGINE", "STATE", "USER", "STARTED", "QUERY"}, rows)
	})
}

// renderQuery prints one query.
func renderQuery(r *output.Renderer, q *querytracker.QueryItem) error {
	if q == nil {
		return fmt.Errorf("no query loaded")
	}
	return r.Render(q, func() {
		styles := r.Styles()
		r.Header(1, "Query "+q.ID)
		r.Printf("  %s: %s\n", styles.Bold.Render("Engine"), q.Engine.DisplayName())
		if q.State != "" {
			r.Printf("  %s: %s\n", styles.Bold.Render("State"), styles.StatusStyle(string(q.State)).Render(string(q.State)))
		}
		if q.User != "" {
			r.Printf("  %s: %s\n", styles.Bold.Render("User"), q.User)
		}
		if q.StartTime != nil {
			r.Printf("  %s: %s\n", styles.Bold.Render("Started"), q.StartTime.Format("2006-01-02 15:04:05"))
		}
		if q.FinishTime != nil {
			r.Printf("  %s: %s\n", styles.Bold.Render("Finished"), q.FinishTime.Format("2006-01-02 15:04:05"))
		}
		renderSettings(r, q.Settings)
		r.Println()
		r.Println(q.Query)
	})
}

func renderSettings(r *output.Renderer, settings querytracker.Settings) {
	if len(settings) == 0 {
		return
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	r.Printf("  %s:\n", r.Styles().Bold.Render("Settings"))
	for _, k := range keys {
		r.Printf("    %s = %s\n", k, querytracker.FormatSetting(k, settings[k]))
	}
}

func firstLine(s string, limit int) string {
	line, _, more := strings.Cut(strings.TrimSpace(s), "\n")
	if len([]rune(line)) > limit {
		return string([]rune(line)[:limit-1]) + "…"
	}
	if more {
		return line + " …"
	}
	return line
}

func completeEngines(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0, len(querytracker.Engines))
	for _, e := range querytracker.Engines {
		names = append(names, string(e))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// defaultEngine returns the configured engine, falling back to the built-in default.
func defaultEngine(cfg *config.Config) querytracker.Engine {
	engine, err := querytracker.ParseEngine(cfg.Query.Engine)
	if err != nil {
		return querytracker.DefaultEngine
	}
	return engine
}
