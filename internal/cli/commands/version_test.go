package commands

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		info    BuildInfo
		args    []string
		wantOut []string
	}{
		{
			name:    "release build",
			info:    BuildInfo{Version: "1.2.3", GitCommit: "a1b2c3d", BuildDate: "2024-03-01T12:00:00Z"},
			wantOut: []string{"ytconsole v1.2.3", "YTsaurus", "commit:   a1b2c3d", "built:    2024-03-01T12:00:00Z", runtime.Version()},
		},
		{
			name:    "ldflags not set",
			info:    BuildInfo{Version: "dev"},
			wantOut: []string{"ytconsole vdev", "commit:   unknown", "built:    unknown"},
		},
		{
			name:    "short",
			info:    BuildInfo{Version: "1.2.3", GitCommit: "a1b2c3d"},
			args:    []string{"--short"},
			wantOut: []string{"1.2.3\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHahn(t, "output: table\n")

			out, _, err := execute(NewVersionCommand(tt.info), tt.args...)
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			if len(tt.args) > 0 {
				assert.Equal(t, "1.2.3\n", out)
			}
		})
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	setupHahn(t, "output: json\n")

	out, _, err := execute(NewVersionCommand(BuildInfo{Version: "1.2.3", GitCommit: "a1b2c3d", BuildDate: "2024-03-01"}))
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info), out)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "a1b2c3d", info.GitCommit)
	assert.Equal(t, "2024-03-01", info.BuildDate)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestBuildInfo_Summary(t *testing.T) {
	assert.Equal(t, "1.2.3 (commit a1b2c3d, built 2024-03-01)",
		BuildInfo{Version: "1.2.3", GitCommit: "a1b2c3d", BuildDate: "2024-03-01"}.Summary())
	assert.True(t, strings.HasSuffix(BuildInfo{Version: "dev"}.Summary(), "(commit unknown, built unknown)"))
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{})

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup("short"))
}
