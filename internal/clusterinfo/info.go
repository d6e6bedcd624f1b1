package clusterinfo

import (
	"context"
	"sync"

	"github.com/ytsaurus/ytconsole/internal/apierr"
)

// Info is the aggregate cluster-info answer. Exactly one field of each
// pair (Token/TokenError, Version/VersionError) is set.
type Info struct {
	Token        *Token            `json:"token,omitempty" yaml:"token,omitempty"`
	Version      *string           `json:"version" yaml:"version"`
	TokenError   *apierr.ErrorInfo `json:"tokenError,omitempty" yaml:"token_error,omitempty"`
	VersionError *apierr.ErrorInfo `json:"versionError,omitempty" yaml:"version_error,omitempty"`
}

// GetClusterInfo fetches the XSRF token and the cluster version concurrently.
// A failure of one branch never affects the other and the call never fails:
// errors are normalized into TokenError/VersionError and logged.
func (f *Fetcher) GetClusterInfo(ctx context.Context, req Request, setup UserSetup) Info {
	var (
		info Info
		wg   sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		version, err := f.GetVersion(ctx, setup.Cluster)
		if err != nil {
			info.VersionError = apierr.Prepare("Failed to get cluster version ", err)
			f.logError(ctx, "Failed to get cluster version: "+err.Error(), err, "cluster", setup.Cluster.ID)
			return
		}
		info.Version = &version
	}()
	go func() {
		defer wg.Done()
		token, err := f.GetXSRFToken(ctx, req, setup, "ui_clusterInfo")
		if err != nil {
			info.TokenError = apierr.Prepare("Failed to get XSRF token ", err)
			f.logError(ctx, "Failed to get XSRF token", err, "cluster", setup.Cluster.ID)
			return
		}
		info.Token = token
	}()
	wg.Wait()

	return info
}
