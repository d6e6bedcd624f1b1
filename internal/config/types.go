// Package config provides shared cluster configuration types for ytconsole.
// This package is decoupled from CLI concerns and is used by the UI server,
// the cluster-info layer and the query tracker client.
package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ClusterConfig describes one cluster the console can talk to.
type ClusterConfig struct {
	ID     string `koanf:"id" json:"id" yaml:"id"`
	Name   string `koanf:"name" json:"name,omitempty" yaml:"name,omitempty"`
	Proxy  string `koanf:"proxy" json:"proxy" yaml:"proxy"` // host[:port] of the HTTP proxy
	Secure bool   `koanf:"secure" json:"secure" yaml:"secure"`

	// Query tracker stage (production, testing, ...)
	QueryTrackerStage string `koanf:"query_tracker_stage" json:"query_tracker_stage,omitempty" yaml:"query_tracker_stage,omitempty"`

	// Headers forwarded on every proxied call (e.g. Authorization)
	AuthHeaders map[string]string `koanf:"auth_headers" json:"-" yaml:"-"`
}

// Protocol returns the URL scheme prefix for the proxy.
func (c ClusterConfig) Protocol() string {
	if c.Secure {
		return "https://"
	}
	return "http://"
}

// ProxyBaseURL returns the base URL of the cluster HTTP proxy.
func (c ClusterConfig) ProxyBaseURL() string {
	return c.Protocol() + strings.TrimSuffix(c.Proxy, "/")
}

// Validate checks if the cluster configuration is usable.
func (c ClusterConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cluster id is required")
	}
	if c.Proxy == "" {
		return fmt.Errorf("cluster %s: proxy is required", c.ID)
	}
	if strings.Contains(c.Proxy, "://") {
		return fmt.Errorf("cluster %s: proxy must be host[:port] without scheme, got %q", c.ID, c.Proxy)
	}
	return nil
}

// ClusterSet is a concurrency-safe set of clusters that can be swapped on reload.
type ClusterSet struct {
	mu       sync.RWMutex
	clusters map[string]ClusterConfig
}

// NewClusterSet creates a ClusterSet from the given clusters.
func NewClusterSet(clusters map[string]ClusterConfig) *ClusterSet {
	s := &ClusterSet{}
	s.Replace(clusters)
	return s
}

// Replace swaps the whole cluster map.
func (s *ClusterSet) Replace(clusters map[string]ClusterConfig) {
	next := make(map[string]ClusterConfig, len(clusters))
	for id, c := range clusters {
		next[id] = c
	}
	s.mu.Lock()
	s.clusters = next
	s.mu.Unlock()
}

// Get returns the cluster with the given id.
func (s *ClusterSet) Get(id string) (ClusterConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clusters[id]
	return c, ok
}

// All returns a copy of the cluster map.
func (s *ClusterSet) All() map[string]ClusterConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ClusterConfig, len(s.clusters))
	for id, c := range s.clusters {
		out[id] = c
	}
	return out
}

// IDs returns the sorted cluster ids.
func (s *ClusterSet) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.clusters))
	for id := range s.clusters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
