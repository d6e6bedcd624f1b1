package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ClustersFileName is the default name of a standalone clusters file.
const ClustersFileName = "clusters.yaml"

// clustersFile is the on-disk layout of a clusters file.
type clustersFile struct {
	Clusters map[string]ClusterConfig `koanf:"clusters"`
}

// LoadClustersFile loads and validates clusters from a YAML file.
// The file holds a top-level "clusters" map keyed by cluster id.
func LoadClustersFile(path string) (map[string]ClusterConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("clusters file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading clusters file %s: %w", path, err)
	}

	var cf clustersFile
	if err := k.Unmarshal("", &cf); err != nil {
		return nil, fmt.Errorf("unable to decode clusters file %s: %w", path, err)
	}
	if cf.Clusters == nil {
		cf.Clusters = map[string]ClusterConfig{}
	}

	ApplyDefaults(cf.Clusters)
	if err := ValidateClusters(cf.Clusters); err != nil {
		return nil, err
	}
	return cf.Clusters, nil
}

// ValidateClusters validates every cluster in the map.
func ValidateClusters(clusters map[string]ClusterConfig) error {
	for id, c := range clusters {
		if c.ID != id {
			return fmt.Errorf("cluster %q: id %q does not match its key", id, c.ID)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
