package querytracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/config"
)

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

const (
	defaultUserAgent = "ytconsole/0.1"
	maxErrorBody     = 64 << 10
)

// Client talks to the query tracker through a cluster HTTP proxy.
type Client struct {
	baseURL     string
	stage       string
	headers     map[string]string
	http        *http.Client
	userAgent   string
	correlation func(ctx context.Context) string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCorrelation sets a function deriving the correlation id sent with every call.
func WithCorrelation(fn func(ctx context.Context) string) ClientOption {
	return func(c *Client) {
		c.correlation = fn
	}
}

// NewClient builds a Client for the given cluster.
func NewClient(cluster config.ClusterConfig, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	stage := cluster.QueryTrackerStage
	if stage == "" {
		stage = config.DefaultQueryTrackerStage
	}
	c := &Client{
		baseURL:   cluster.ProxyBaseURL(),
		stage:     stage,
		headers:   cluster.AuthHeaders,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type getQueryRequest struct {
	QueryID string `json:"query_id"`
	Stage   string `json:"stage"`
}

type startQueryRequest struct {
	Engine   Engine   `json:"engine"`
	Query    string   `json:"query"`
	Settings Settings `json:"settings"`
	Stage    string   `json:"stage"`
}

type listQueriesRequest struct {
	Stage  string      `json:"stage"`
	User   string      `json:"user,omitempty"`
	Engine Engine      `json:"engine,omitempty"`
	State  QueryStatus `json:"state,omitempty"`
	Filter string      `json:"filter,omitempty"`
	Limit  int         `json:"limit,omitempty"`
}

type listQueriesResponse struct {
	Queries    []QueryItem `json:"queries"`
	Incomplete bool        `json:"incomplete"`
}

// GetQuery fetches one query by id.
func (c *Client) GetQuery(ctx context.Context, id string) (*QueryItem, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var item QueryItem
	if err := c.do(ctx, "get_query", getQueryRequest{QueryID: id, Stage: c.stage}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// StartQuery submits a draft for execution.
func (c *Client) StartQuery(ctx context.Context, draft DraftQuery) (*StartQueryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	settings := draft.Settings
	if settings == nil {
		settings = Settings{}
	}
	req := startQueryRequest{
		Engine:   draft.Engine,
		Query:    draft.Query,
		Settings: settings,
		Stage:    c.stage,
	}
	var res StartQueryResult
	if err := c.do(ctx, "start_query", req, &res); err != nil {
		return nil, err
	}
	if res.QueryID == "" {
		return nil, fmt.Errorf("start_query: empty query_id in response")
	}
	return &res, nil
}

// AbortQuery requests the query to stop. The response body is ignored.
func (c *Client) AbortQuery(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, "abort_query", getQueryRequest{QueryID: id, Stage: c.stage}, nil)
}

// ListQueries returns the most recent queries matching params.
func (c *Client) ListQueries(ctx context.Context, params ListParams) ([]QueryItem, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req := listQueriesRequest{
		Stage:  c.stage,
		User:   params.User,
		Engine: params.Engine,
		State:  params.State,
		Filter: params.Filter,
		Limit:  params.Limit,
	}
	var res listQueriesResponse
	if err := c.do(ctx, "list_queries", req, &res); err != nil {
		return nil, err
	}
	return res.Queries, nil
}

func (c *Client) do(ctx context.Context, command string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", command, err)
	}

	url := c.baseURL + "/api/v4/" + command
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	var correlationID string
	if c.correlation != nil {
		if correlationID = c.correlation(ctx); correlationID != "" {
			req.Header.Set(apierr.CorrelationHeader, correlationID)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apierr.HTTPError{Method: req.Method, URL: url, CorrelationID: correlationID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apierr.NewHTTPError(req.Method, url, resp.StatusCode, data, correlationID)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", command, err)
	}
	return nil
}

// String describes the client for logs.
func (c *Client) String() string {
	return strings.TrimPrefix(strings.TrimPrefix(c.baseURL, "https://"), "http://") + " (" + c.stage + ")"
}
