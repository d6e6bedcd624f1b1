// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ytsaurus/ytconsole/internal/apierr"
	"github.com/ytsaurus/ytconsole/internal/config"
	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/testutil"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

// FakeQueryAPI is an in-memory query tracker.
type FakeQueryAPI struct {
	mu sync.Mutex

	Queries  map[string]*querytracker.QueryItem
	Listed   []querytracker.QueryItem
	StartID  string
	StartErr error
	AbortErr error
	ListErr  error

	Started    []querytracker.DraftQuery
	Aborted    []string
	ListedWith []querytracker.ListParams
}

// NewFakeQueryAPI creates an empty FakeQueryAPI.
func NewFakeQueryAPI() *FakeQueryAPI {
	return &FakeQueryAPI{Queries: map[string]*querytracker.QueryItem{}, StartID: "started-id"}
}

// GetQuery implements querytracker.API.
func (f *FakeQueryAPI) GetQuery(_ context.Context, id string) (*querytracker.QueryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.Queries[id]
	if !ok {
		return nil, apierr.NewHTTPError(http.MethodPost, "/api/v4/get_query", http.StatusNotFound,
			[]byte(`{"message":"query not found"}`), "")
	}
	cp := *item
	return &cp, nil
}

// StartQuery implements querytracker.API.
func (f *FakeQueryAPI) StartQuery(_ context.Context, draft querytracker.DraftQuery) (*querytracker.StartQueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	f.Started = append(f.Started, draft)
	f.Queries[f.StartID] = &querytracker.QueryItem{
		ID: f.StartID, Query: draft.Query, Engine: draft.Engine, Settings: draft.Settings, State: querytracker.StatusRunning,
	}
	return &querytracker.StartQueryResult{QueryID: f.StartID}, nil
}

// AbortQuery implements querytracker.API.
func (f *FakeQueryAPI) AbortQuery(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AbortErr != nil {
		return f.AbortErr
	}
	f.Aborted = append(f.Aborted, id)
	if item, ok := f.Queries[id]; ok {
		item.State = querytracker.StatusAborted
	}
	return nil
}

// ListQueries implements querytracker.API.
func (f *FakeQueryAPI) ListQueries(_ context.Context, params querytracker.ListParams) ([]querytracker.QueryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListedWith = append(f.ListedWith, params)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]querytracker.QueryItem(nil), f.Listed...), nil
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Clusters     *config.ClusterSet
	API          *FakeQueryAPI
	Registry     *workspace.Registry
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates clusters "hahn" and "freud" backed by one FakeQueryAPI.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	clusters := config.NewClusterSet(map[string]config.ClusterConfig{
		"hahn":  {ID: "hahn", Name: "Hahn", Proxy: "hahn.example.net"},
		"freud": {ID: "freud", Name: "Freud", Proxy: "freud.example.net"},
	})
	api := NewFakeQueryAPI()
	registry := workspace.NewRegistry(clusters, func(config.ClusterConfig) querytracker.API { return api }, testutil.NewTestLogger(t))

	return &TestFixture{
		Clusters:     clusters,
		API:          api,
		Registry:     registry,
		SessionStore: NewTestSessionStore(),
	}
}

// Browser sends requests to a handler and keeps the cookies it receives.
type Browser struct {
	handler http.Handler
	cookies map[string]*http.Cookie
}

// NewBrowser creates a Browser for h.
func NewBrowser(h http.Handler) *Browser {
	return &Browser{handler: h, cookies: map[string]*http.Cookie{}}
}

// Do performs a request with an optional JSON body.
func (b *Browser) Do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

// Cookies returns the cookies collected so far.
func (b *Browser) Cookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(b.cookies))
	for _, c := range b.cookies {
		out = append(out, c)
	}
	return out
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context that expires after timeout.
// The context is released by the timeout itself.
func RequestWithTimeout(r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	_ = cancel
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
