package config

import "time"

// Default configuration values.
const (
	DefaultQueryTrackerStage = "production"
	DefaultRequestTimeout    = 15 * time.Second
)

// ApplyDefaults fills unset cluster fields. The map key wins over an empty ID.
func ApplyDefaults(clusters map[string]ClusterConfig) {
	for id, c := range clusters {
		if c.ID == "" {
			c.ID = id
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		if c.QueryTrackerStage == "" {
			c.QueryTrackerStage = DefaultQueryTrackerStage
		}
		clusters[id] = c
	}
}
