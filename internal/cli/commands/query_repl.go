package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ytsaurus/ytconsole/internal/cli/output"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
)

func newQueryREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl <cluster> [query-id]",
		Short: "Edit and run queries interactively",
		Long: `Open an interactive editor for a query draft.

Type the query text; a line ending with a semicolon completes the draft.
Dot-commands change the engine and settings, run or abort the query and
load other queries. Type .help for the list.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeClusters,
		RunE: func(cmd *cobra.Command, args []string) error {
			queryID := ""
			if len(args) > 1 {
				queryID = args[1]
			}
			return runQueryREPL(cmd, args[0], queryID)
		},
	}
}

// repl holds the state of an interactive session.
type repl struct {
	cluster string
	session *querySession
	r       *output.Renderer
	errOut  io.Writer
	pending strings.Builder
}

func runQueryREPL(cmd *cobra.Command, clusterID, queryID string) error {
	cc, s, ctx, err := openQuerySession(cmd, clusterID, querytracker.ListParams{})
	if err != nil {
		return err
	}

	if queryID != "" {
		s.controller.Init(ctx, queryID)
	} else {
		s.controller.CreateEmptyQuery(defaultEngine(cc.Cfg), "")
	}

	// Setup history file next to the telemetry store
	historyDir := filepath.Dir(cc.Cfg.Telemetry.DBPath)
	if err := os.MkdirAll(historyDir, 0750); err != nil {
		cc.Logger.Debug("history disabled", "error", err)
	}
	historyFile := filepath.Join(historyDir, "query_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "",
		HistoryFile:     historyFile,
		AutoComplete:    newDotCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	rp := &repl{cluster: clusterID, session: s, r: cc.Renderer, errOut: cmd.ErrOrStderr()}

	// Print welcome message
	cc.Renderer.Printf("ytconsole query REPL (cluster: %s)\n", clusterID)
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		rl.SetPrompt(rp.prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			rp.pending.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if rp.handleLine(ctx, line) {
			break
		}
	}
	return nil
}

func (rp *repl) prompt() string {
	if rp.pending.Len() > 0 {
		return "    ...> "
	}
	return fmt.Sprintf("%s (%s)> ", rp.cluster, rp.session.store.Draft().Engine)
}

// handleLine processes one input line and reports whether the REPL should exit.
func (rp *repl) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	if strings.HasPrefix(trimmed, ".") && rp.pending.Len() == 0 {
		return rp.handleDotCommand(ctx, trimmed)
	}

	// Accumulate query text until semicolon
	if rp.pending.Len() > 0 {
		rp.pending.WriteString("\n")
	}
	rp.pending.WriteString(line)
	if strings.HasSuffix(trimmed, ";") {
		rp.commitPending()
		rp.r.Muted("draft updated")
	}
	return false
}

func (rp *repl) commitPending() {
	if rp.pending.Len() == 0 {
		return
	}
	text := strings.TrimSuffix(strings.TrimSpace(rp.pending.String()), ";")
	rp.pending.Reset()
	rp.session.controller.PatchDraft(querytracker.DraftPatch{Query: &text})
}

func (rp *repl) errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(rp.errOut, "Error: "+format+"\n", a...)
}

func (rp *repl) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	c := rp.session.controller

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(rp.r.Out())

	case ".engine":
		if len(parts) < 2 {
			rp.r.Println(rp.session.store.Draft().Engine.DisplayName())
			return false
		}
		engine, err := querytracker.ParseEngine(parts[1])
		if err != nil {
			rp.errorf("%v", err)
			return false
		}
		c.PatchDraft(querytracker.DraftPatch{Engine: &engine})

	case ".set":
		if len(parts) < 2 {
			rp.errorf("usage: .set <key> <value>")
			return false
		}
		key := parts[1]
		raw := strings.Join(parts[2:], " ")
		value, msg := querytracker.ParseSetting(key, raw)
		if msg != "" {
			rp.errorf("%s: %s", key, msg)
			return false
		}
		settings := rp.session.store.Draft().Settings.Clone()
		if value == nil {
			delete(settings, key)
		} else {
			settings[key] = value
		}
		c.PatchDraft(querytracker.DraftPatch{Settings: settings})

	case ".unset":
		if len(parts) < 2 {
			rp.errorf("usage: .unset <key>")
			return false
		}
		settings := rp.session.store.Draft().Settings.Clone()
		delete(settings, parts[1])
		c.PatchDraft(querytracker.DraftPatch{Settings: settings})

	case ".show":
		rp.showDraft()

	case ".run":
		rp.commitPending()
		id, err := c.RunQuery(ctx)
		if err != nil {
			rp.errorf("%v", err)
			return false
		}
		rp.r.Success("Started query " + id)
		rp.r.Muted(rp.session.history.Current())
		// follow the started query like the console does after navigation
		c.LoadQuery(ctx, id)

	case ".abort":
		current := rp.session.store.CurrentQuery()
		if current == nil || current.ID == "" {
			rp.r.Muted("no submitted query to abort")
			return false
		}
		if err := c.AbortCurrentQuery(ctx); err != nil {
			rp.errorf("%v", err)
			return false
		}
		if q := rp.session.store.CurrentQuery(); q != nil {
			rp.r.Success(fmt.Sprintf("Query %s is %s", q.ID, q.State))
		}

	case ".load":
		if len(parts) < 2 {
			rp.errorf("usage: .load <query-id>")
			return false
		}
		before := rp.session.toaster.Err()
		c.LoadQuery(ctx, parts[1])
		if err := rp.session.toaster.Err(); err != nil && err != before {
			rp.errorf("%v", err)
			return false
		}
		rp.showDraft()

	case ".new":
		c.CreateEmptyQuery(rp.session.store.Draft().Engine, "")

	case ".list":
		params := rp.session.list.Params()
		params.Filter = strings.Join(parts[1:], " ")
		rp.session.list.SetParams(params)
		if err := rp.session.list.Refresh(ctx); err != nil {
			rp.errorf("failed to list queries: %v", err)
			return false
		}
		rows := [][]any{}
		for _, q := range rp.session.list.Items() {
			rows = append(rows, []any{q.ID, q.Engine.DisplayName(), string(q.State), firstLine(q.Query, 50)})
		}
		rp.r.Table([]string{"ID", "ENGINE", "STATE", "QUERY"}, rows)

	default:
		rp.errorf("unknown command: %s (type .help for commands)", command)
	}
	return false
}

func (rp *repl) showDraft() {
	state := rp.session.store.State()
	styles := rp.r.Styles()

	if q := state.QueryItem; q != nil && q.ID != "" {
		rp.r.Printf("%s: %s (%s)\n", styles.Bold.Render("Query"), q.ID, styles.StatusStyle(string(q.State)).Render(string(q.State)))
	} else {
		rp.r.Printf("%s: %s\n", styles.Bold.Render("Query"), styles.Muted.Render("new"))
	}
	rp.r.Printf("%s: %s\n", styles.Bold.Render("Engine"), state.Draft.Engine.DisplayName())
	renderSettings(rp.r, state.Draft.Settings)
	if state.Draft.Query != "" {
		rp.r.Println(state.Draft.Query)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help               Show this help message
  .show               Show the draft
  .engine [name]      Show or change the engine (yql, chyt, ql, spyt)
  .set <key> <value>  Set an engine setting (empty value removes it)
  .unset <key>        Remove an engine setting
  .run                Start the draft
  .abort              Abort the current query
  .load <query-id>    Load a query into the draft
  .new                Start an empty draft
  .list [text]        List recent queries, optionally containing text
  .quit / .exit       Exit the REPL

Tips:
  - Query text ends with a semicolon (;)
  - Use arrow keys to navigate history
  - Numeric settings accept values like "2 GiB" or "100 000"
`
	_, _ = fmt.Fprintln(w, help)
}

// newDotCompleter creates a readline completer for dot-commands.
func newDotCompleter() *readline.PrefixCompleter {
	engines := make([]readline.PrefixCompleterInterface, 0, len(querytracker.Engines))
	for _, e := range querytracker.Engines {
		engines = append(engines, readline.PcItem(string(e)))
	}
	settings := make([]readline.PrefixCompleterInterface, 0, len(querytracker.NumericSettings))
	for key := range querytracker.NumericSettings {
		settings = append(settings, readline.PcItem(key))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".engine", engines...),
		readline.PcItem(".set", settings...),
		readline.PcItem(".unset", settings...),
		readline.PcItem(".run"),
		readline.PcItem(".abort"),
		readline.PcItem(".load"),
		readline.PcItem(".new"),
		readline.PcItem(".list"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
