// Package config provides configuration management for the ytconsole CLI.
//
// Cluster definitions come from the shared internal/config package; this
// package adds the CLI and server settings around them.
package config

import (
	"time"

	sharedcfg "github.com/ytsaurus/ytconsole/internal/config"
)

// ClusterConfig is an alias for the shared cluster configuration.
type ClusterConfig = sharedcfg.ClusterConfig

// ServerConfig holds configuration for the UI server.
type ServerConfig struct {
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// TelemetryConfig holds configuration for the request stats store.
type TelemetryConfig struct {
	Enabled bool   `koanf:"enabled"`
	DBPath  string `koanf:"db_path"`
}

// QueryConfig holds defaults for query commands.
type QueryConfig struct {
	Engine    string `koanf:"engine"`
	ListLimit int    `koanf:"list_limit"`
}

// Config holds all CLI configuration options.
type Config struct {
	LogLevel       string                   `koanf:"log_level"`
	LogFormat      string                   `koanf:"log_format"`
	Verbose        bool                     `koanf:"verbose"`
	OutputFormat   string                   `koanf:"output"`
	RequestTimeout time.Duration            `koanf:"request_timeout"`
	ClustersFile   string                   `koanf:"clusters_file"`
	Clusters       map[string]ClusterConfig `koanf:"clusters"`
	Server         ServerConfig             `koanf:"server"`
	Telemetry      TelemetryConfig          `koanf:"telemetry"`
	Query          QueryConfig              `koanf:"query"`

	inline map[string]ClusterConfig
}

// InlineClusters returns the clusters defined in the config file itself,
// before the clusters file was merged over them.
func (c *Config) InlineClusters() map[string]ClusterConfig {
	return c.inline
}

// Default configuration values.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultOutput     = "auto" // table on a TTY, json otherwise
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 8765
	DefaultTelemetry  = ".ytconsole/telemetry.db"
	DefaultEngine     = "yql"
	DefaultListLimit  = 20
	DefaultConfigName = "ytconsole"
)

// defaults returns the flat default map loaded before any other source.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log_level":         DefaultLogLevel,
		"log_format":        DefaultLogFormat,
		"verbose":           false,
		"output":            DefaultOutput,
		"request_timeout":   sharedcfg.DefaultRequestTimeout.String(),
		"clusters_file":     "",
		"server.host":       DefaultHost,
		"server.port":       DefaultPort,
		"server.watch":      true,
		"telemetry.enabled": true,
		"telemetry.db_path": DefaultTelemetry,
		"query.engine":      DefaultEngine,
		"query.list_limit":  DefaultListLimit,
	}
}
