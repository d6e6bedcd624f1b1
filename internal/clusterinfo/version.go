package clusterinfo

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ytsaurus/ytconsole/internal/config"
)

var versionRe = regexp.MustCompile(`\d+\.\d+\.\d+`)

// ClusterVersion is one entry of GetVersions. Version is empty when the
// cluster could not be reached or reported no recognizable version.
type ClusterVersion struct {
	ID      string `json:"id" yaml:"id"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// GetVersion returns the raw version text reported by the cluster proxy.
func (f *Fetcher) GetVersion(ctx context.Context, cluster config.ClusterConfig) (string, error) {
	_, body, err := f.get(ctx, cluster.ProxyBaseURL()+"/version", nil, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ParseVersion extracts the first major.minor.patch triple from s.
func ParseVersion(s string) (string, bool) {
	m := versionRe.FindString(s)
	return m, m != ""
}

// GetVersions fetches the version of every cluster concurrently. Failures are
// logged and reported as an entry without version; the call itself never fails.
// Entries are sorted by cluster id.
func (f *Fetcher) GetVersions(ctx context.Context, req Request, clusters map[string]config.ClusterConfig) []ClusterVersion {
	ids := make([]string, 0, len(clusters))
	for id := range clusters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ClusterVersion, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range ids {
		cluster := clusters[key]
		id := cluster.ID
		if id == "" {
			id = key
		}
		g.Go(func() error {
			out[i] = ClusterVersion{ID: id}
			raw, err := f.GetVersion(gctx, cluster)
			if err != nil {
				f.logError(gctx, "getVersion error", err, "cluster", id, "request_id", req.ID)
				return nil
			}
			if v, ok := ParseVersion(strings.TrimSpace(raw)); ok {
				out[i].Version = v
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
