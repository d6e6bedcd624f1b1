package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ytsaurus/ytconsole/internal/cli/output"
)

// BuildInfo describes the binary. The fields are set through -ldflags at
// release time; unset ones read "unknown".
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func (b BuildInfo) withDefaults() BuildInfo {
	for _, f := range []*string{&b.Version, &b.GitCommit, &b.BuildDate} {
		if *f == "" {
			*f = "unknown"
		}
	}
	if b.GoVersion == "" {
		b.GoVersion = runtime.Version()
	}
	if b.Platform == "" {
		b.Platform = runtime.GOOS + "/" + runtime.GOARCH
	}
	return b
}

// Summary is the one-line form used by --version.
func (b BuildInfo) Summary() string {
	b = b.withDefaults()
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.GitCommit, b.BuildDate)
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the ytconsole version and the commit and date it was built from.

With --output json or yaml the build information is printed as a document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := info.withDefaults()
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, info.Version)
				return nil
			}

			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			// Text unless a document format was asked for explicitly.
			switch output.Mode(cc.Cfg.OutputFormat) {
			case output.ModeJSON, output.ModeYAML:
				return cc.Renderer.Render(info, nil)
			}
			_, _ = fmt.Fprintf(out, "ytconsole v%s\n", info.Version)
			_, _ = fmt.Fprintln(out, "Console backend for YTsaurus clusters")
			_, _ = fmt.Fprintf(out, "  commit:   %s\n", info.GitCommit)
			_, _ = fmt.Fprintf(out, "  built:    %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(out, "  go:       %s %s\n", info.GoVersion, info.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
