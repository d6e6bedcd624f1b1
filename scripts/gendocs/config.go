package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytsaurus/ytconsole/internal/cli/config"
	sharedcfg "github.com/ytsaurus/ytconsole/internal/config"
)

// generateConfigDocs generates the configuration file reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "server", "telemetry", "query", "clusters"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go and internal/config/types.go.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "log_level", Type: "string", Default: config.DefaultLogLevel, Description: "Log level: " + strings.Join(config.LogLevels, ", "), Category: "general"},
		{Name: "log_format", Type: "string", Default: config.DefaultLogFormat, Description: "Log format: " + strings.Join(config.LogFormats, ", "), Category: "general"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Verbose output, forces the debug log level", Category: "general"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: " + strings.Join(config.OutputFormats, ", "), Category: "general"},
		{Name: "request_timeout", Type: "duration", Default: sharedcfg.DefaultRequestTimeout.String(), Description: "Timeout of every request to a cluster proxy", Category: "general"},
		{Name: "clusters_file", Type: "string", Description: "YAML file with more clusters; its entries win over inline ones and it is reloaded while serving", Category: "general"},

		{Name: "server.host", Type: "string", Default: config.DefaultHost, Description: "Interface the console server listens on", Category: "server"},
		{Name: "server.port", Type: "int", Default: fmt.Sprint(config.DefaultPort), Description: "Port the console server listens on", Category: "server"},
		{Name: "server.watch", Type: "bool", Default: "true", Description: "Reload the clusters file when it changes", Category: "server"},
		{Name: "server.session_secret", Type: "string", Description: "Secret signing the session cookie; random per start when empty", Category: "server"},

		{Name: "telemetry.enabled", Type: "bool", Default: "true", Description: "Record request stats in the telemetry database", Category: "telemetry"},
		{Name: "telemetry.db_path", Type: "string", Default: config.DefaultTelemetry, Description: "Path of the SQLite telemetry database", Category: "telemetry"},

		{Name: "query.engine", Type: "string", Default: config.DefaultEngine, Description: "Engine of new queries: yql, chyt, ql, spyt", Category: "query"},
		{Name: "query.list_limit", Type: "int", Default: fmt.Sprint(config.DefaultListLimit), Description: "Number of queries listed by default", Category: "query"},

		{Name: "id", Type: "string", Description: "Cluster id; defaults to the map key and must match it", Category: "clusters"},
		{Name: "name", Type: "string", Description: "Display name; defaults to the id", Category: "clusters"},
		{Name: "proxy", Type: "string", Description: "Proxy host[:port] without scheme (required)", Category: "clusters"},
		{Name: "secure", Type: "bool", Default: "false", Description: "Use https to reach the proxy", Category: "clusters"},
		{Name: "query_tracker_stage", Type: "string", Default: sharedcfg.DefaultQueryTrackerStage, Description: "Query tracker stage sent with every tracker command", Category: "clusters"},
		{Name: "auth_headers", Type: "map[string]string", Description: "Headers sent with every request, e.g. Authorization", Category: "clusters"},
	}
}

// envName returns the environment variable that sets key.
func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "ytconsole configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("ytconsole reads `ytconsole.yaml` (or `ytconsole.yml`) from the current directory or " +
		"the nearest parent directory, or the file given with `--config`. Relative paths resolve " +
		"against the directory of the config file.")

	fields := getConfigSchema()
	sections := []struct {
		category, title, intro string
	}{
		{"general", "General", ""},
		{"server", "Server", "Settings of `ytconsole serve`, under the `server` key."},
		{"telemetry", "Telemetry", "Request stats, under the `telemetry` key."},
		{"query", "Queries", "Query tracker defaults, under the `query` key."},
	}

	headers := []string{"Field", "Type", "Default", "Environment", "Description"}
	for _, sec := range sections {
		w.Header(2, sec.title)
		if sec.intro != "" {
			w.Paragraph(sec.intro)
		}
		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(defVal), InlineCode(envName(f.Name)), f.Description})
		}
		w.Table(headers, rows)
	}

	w.Header(2, "Clusters")
	w.Paragraph("Clusters are defined under the `clusters` key, keyed by id. The clusters file uses the same layout.")
	var rows [][]string
	for _, f := range fields {
		if f.Category != "clusters" {
			continue
		}
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(defVal), f.Description})
	}
	w.Table([]string{"Field", "Type", "Default", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `log_level: info
request_timeout: 10s
clusters_file: clusters.yaml

server:
  port: 8765

query:
  engine: chyt

clusters:
  hahn:
    proxy: hahn.yt.example.net
    secure: true
    auth_headers:
      Authorization: OAuth <token>`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
