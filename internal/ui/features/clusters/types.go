package clusters

import (
	"context"

	"github.com/ytsaurus/ytconsole/internal/clusterinfo"
	"github.com/ytsaurus/ytconsole/internal/config"
)

// InfoFetcher is the part of clusterinfo.Fetcher the handlers use.
type InfoFetcher interface {
	GetClusterInfo(ctx context.Context, req clusterinfo.Request, setup clusterinfo.UserSetup) clusterinfo.Info
	GetVersions(ctx context.Context, req clusterinfo.Request, clusters map[string]config.ClusterConfig) []clusterinfo.ClusterVersion
}

// ClusterItem is one configured cluster as exposed to the UI.
type ClusterItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Proxy  string `json:"proxy"`
	Secure bool   `json:"secure"`
}
