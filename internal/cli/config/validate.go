package config

import (
	"fmt"
	"slices"

	sharedcfg "github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
)

// Accepted values of the enum-like settings.
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	LogFormats    = []string{"text", "json"}
	OutputFormats = []string{"auto", "table", "json", "yaml"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %v, got %q", LogLevels, c.LogLevel)
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("log_format must be one of %v, got %q", LogFormats, c.LogFormat)
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("output must be one of %v, got %q", OutputFormats, c.OutputFormat)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Query.ListLimit <= 0 {
		return fmt.Errorf("query.list_limit must be positive, got %d", c.Query.ListLimit)
	}
	if _, err := querytracker.ParseEngine(c.Query.Engine); err != nil {
		return fmt.Errorf("query.engine: %w", err)
	}
	return sharedcfg.ValidateClusters(c.Clusters)
}

// Cluster returns the cluster with the given id.
func (c *Config) Cluster(id string) (ClusterConfig, error) {
	cluster, ok := c.Clusters[id]
	if !ok {
		return ClusterConfig{}, fmt.Errorf("unknown cluster %q\nHint: define it under clusters: in %s.yaml or in the clusters file", id, DefaultConfigName)
	}
	return cluster, nil
}
