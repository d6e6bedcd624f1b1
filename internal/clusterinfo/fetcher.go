// Package clusterinfo fetches per-cluster information from cluster HTTP
// proxies: the XSRF token of the current user and the cluster version.
package clusterinfo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/telemetry"
)

const maxBody = 1 << 20

// Request describes the incoming request a fetch is made on behalf of.
type Request struct {
	ID      string
	Referer string
}

// UserSetup is the cluster and credentials a fetch is made with.
type UserSetup struct {
	Cluster      config.ClusterConfig
	ProxyBaseURL string
	AuthHeaders  map[string]string
}

// NewUserSetup derives the setup for a configured cluster.
func NewUserSetup(cluster config.ClusterConfig) UserSetup {
	return UserSetup{
		Cluster:      cluster,
		ProxyBaseURL: cluster.ProxyBaseURL(),
		AuthHeaders:  cluster.AuthHeaders,
	}
}

// Fetcher performs the cluster-info requests.
type Fetcher struct {
	http     *http.Client
	sink     telemetry.Sink
	logger   *slog.Logger
	hostname string
	now      func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.http = hc }
}

// WithSink sets where request stats go.
func WithSink(s telemetry.Sink) Option {
	return func(f *Fetcher) { f.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a Fetcher. Requests time out after timeout
// (config.DefaultRequestTimeout when zero).
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	host, _ := os.Hostname()
	f := &Fetcher{
		http:     &http.Client{Timeout: timeout},
		sink:     telemetry.Discard{},
		logger:   slog.New(slog.DiscardHandler),
		hostname: host,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// get issues a GET and returns the response body of a 2xx answer.
// Failures are *apierr.HTTPError; status is 0 when no response arrived.
func (f *Fetcher) get(ctx context.Context, url string, headers map[string]string, correlationID string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if correlationID != "" {
		req.Header.Set(apierr.CorrelationHeader, correlationID)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return 0, nil, &apierr.HTTPError{Method: req.Method, URL: url, CorrelationID: correlationID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, &apierr.HTTPError{Method: req.Method, URL: url, CorrelationID: correlationID, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, apierr.NewHTTPError(req.Method, url, resp.StatusCode, body, correlationID)
	}
	return resp.StatusCode, body, nil
}

// logError logs err with the correlation id it carries, if any.
func (f *Fetcher) logError(ctx context.Context, msg string, err error, attrs ...any) {
	if id := apierr.CorrelationIDOf(err); id != "" {
		attrs = append(attrs, apierr.CorrelationHeader, id)
	}
	attrs = append(attrs, "error", err)
	f.logger.ErrorContext(ctx, msg, attrs...)
}
