// Package main provides tests for the ytconsole CLI.
package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ytsaurus/ytconsole/internal/cli"
	"github.com/ytsaurus/ytconsole/internal/cli/config"
	"github.com/ytsaurus/ytconsole/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer)) // logs
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "ytconsole") {
		t.Errorf("version output should contain 'ytconsole', got: %s", output)
	}
}

func TestVersionFlag_BuildInfo(t *testing.T) {
	oldCommit, oldDate := cli.GitCommit, cli.BuildDate
	cli.GitCommit, cli.BuildDate = "a1b2c3d", "2024-03-01"
	t.Cleanup(func() { cli.GitCommit, cli.BuildDate = oldCommit, oldDate })

	output, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if !strings.Contains(output, "commit a1b2c3d, built 2024-03-01") {
		t.Errorf("--version should print the build commit and date, got: %s", output)
	}

	t.Chdir(t.TempDir())
	output, err = run(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "a1b2c3d") {
		t.Errorf("version output should contain the commit, got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"serve", "cluster-info", "versions", "query", "stats", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestClusterInfoCommand(t *testing.T) {
	hahn := testutil.NewCluster(t)
	cfgPath := testutil.WriteConfig(t, map[string]*testutil.Cluster{"hahn": hahn}, "")

	output, err := run(t, "cluster-info", "hahn", "--config", cfgPath, "--output", "json")
	if err != nil {
		t.Fatalf("cluster-info command error = %v", err)
	}

	var info struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("cluster-info output is not JSON: %v\n%s", err, output)
	}
	if info.Version != hahn.Version {
		t.Errorf("version = %q, want %q", info.Version, hahn.Version)
	}
}

func TestQueryRunCommand_EngineFlag(t *testing.T) {
	hahn := testutil.NewCluster(t)
	cfgPath := testutil.WriteConfig(t, map[string]*testutil.Cluster{"hahn": hahn}, "")

	_, err := run(t, "query", "run", "hahn", "SELECT 1", "--engine", "ql", "--config", cfgPath, "-o", "json")
	if err != nil {
		t.Fatalf("query run command error = %v", err)
	}
	if len(hahn.Started) != 1 || hahn.Started[0]["engine"] != "ql" {
		t.Errorf("started = %v, want one ql query", hahn.Started)
	}
}

func TestInvalidFlagValue(t *testing.T) {
	hahn := testutil.NewCluster(t)
	cfgPath := testutil.WriteConfig(t, map[string]*testutil.Cluster{"hahn": hahn}, "")

	_, err := run(t, "versions", "--config", cfgPath, "--log-level", "loud")
	if err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should name log_level, got: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "frobnicate")
	if err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	if !strings.Contains(output, "ytconsole") {
		t.Errorf("completion script should mention ytconsole")
	}
}
