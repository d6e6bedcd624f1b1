package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytsaurus/ytconsole/internal/telemetry"
)

// StatsOptions holds options for the stats command.
type StatsOptions struct {
	Service string
	Limit   int
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded request statistics",
		Long: `Show the statistics recorded for requests made to cluster proxies,
most recent first.

Statistics are written by the console server and the CLI when telemetry is
enabled (telemetry.enabled, --no-telemetry).`,
		Example: `  ytconsole stats
  ytconsole stats --service version --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Service, "service", "", "Only records of this service (version, token)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of records")

	return cmd
}

func runStats(cmd *cobra.Command, opts *StatsOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if !cc.Cfg.Telemetry.Enabled {
		return fmt.Errorf("telemetry is disabled\nHint: set telemetry.enabled to true in ytconsole.yaml")
	}

	store, _, cleanup, err := openTelemetry(cc)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := store.ListStats(cmd.Context(), telemetry.ListFilter{Service: opts.Service, Limit: opts.Limit})
	if err != nil {
		return err
	}
	if records == nil {
		records = []telemetry.StoredRecord{}
	}

	r := cc.Renderer
	return r.Render(records, func() {
		styles := r.Styles()
		rows := make([][]any, 0, len(records))
		for _, rec := range records {
			status := fmt.Sprint(rec.ResponseStatus)
			if rec.ResponseStatus >= 400 || rec.ResponseStatus == 0 {
				status = styles.Error.Render(status)
			}
			rows = append(rows, []any{
				humanize.Time(rec.Timestamp),
				rec.Host,
				rec.Service,
				status,
				fmt.Sprintf("%d ms", rec.RequestTime),
				humanize.Bytes(uint64(max(rec.HeaderContentLength, 0))),
				rec.RequestID,
			})
		}
		r.Table([]string{"WHEN", "HOST", "SERVICE", "STATUS", "TIME", "SIZE", "REQUEST ID"}, rows)
	})
}
