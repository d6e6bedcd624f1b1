package clusterinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/telemetry"
)

// Token is the whoami answer of a cluster proxy.
type Token struct {
	Login     string `json:"login" yaml:"login"`
	CSRFToken string `json:"csrf_token" yaml:"csrf_token"`
}

// GetXSRFToken asks the proxy who the user is. Every attempt, successful or
// not, is logged and recorded as a ytRequests stats entry.
func (f *Fetcher) GetXSRFToken(ctx context.Context, req Request, setup UserSetup, actionPrefix string) (*Token, error) {
	start := f.now()
	correlationID := req.ID + ".getXSRFToken"

	status, body, err := f.get(ctx, setup.ProxyBaseURL+"/auth/whoami", setup.AuthHeaders, correlationID)
	if err != nil {
		f.sendStats(ctx, req, setup, actionPrefix, correlationID, start, apierr.StatusOf(err, http.StatusInternalServerError))
		return nil, err
	}
	f.sendStats(ctx, req, setup, actionPrefix, correlationID, start, status)

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode whoami response: %w", err)
	}
	return &token, nil
}

func (f *Fetcher) sendStats(ctx context.Context, req Request, setup UserSetup, actionPrefix, correlationID string, start time.Time, status int) {
	now := f.now()
	f.logger.InfoContext(ctx, "getXSRFToken",
		"xYTCorrelationId", correlationID,
		"responseStatus", status,
	)

	rec := telemetry.Record{
		ResponseStatus:      status,
		HeaderContentLength: 0,
		Timestamp:           now,
		Host:                f.hostname,
		Service:             setup.Cluster.ID,
		RequestTime:         now.Sub(start).Milliseconds(),
		RequestID:           req.ID,
		Action:              actionPrefix + ".getXSRFToken",
		Referer:             req.Referer,
		Page:                "",
	}
	// The record outlives the caller: a client that went away still counts.
	if err := f.sink.RecordStats(context.WithoutCancel(ctx), telemetry.RequestsStatsName, rec); err != nil {
		f.logger.WarnContext(ctx, "failed to record request stats", "error", err)
	}
}
