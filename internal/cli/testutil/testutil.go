// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/ytsaurus/ytconsole/internal/cli/output"
)

// Cluster is a fake cluster proxy serving the version, token and query tracker endpoints.
type Cluster struct {
	*httptest.Server

	mu       sync.Mutex
	Version  string
	Queries  map[string]map[string]any
	Commands []string
	Started  []map[string]any
	// LastList is the body of the last list_queries request.
	LastList map[string]any
	// FailCommand makes the named command answer 500.
	FailCommand string
}

// NewCluster starts a fake cluster proxy closed at test cleanup.
func NewCluster(t *testing.T) *Cluster {
	t.Helper()

	c := &Cluster{Version: "23.2.1-up-r1234", Queries: map[string]map[string]any{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, c.Version)
	})
	mux.HandleFunc("GET /auth/whoami", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"login":"robot","csrf_token":"csrf-1"}`)
	})
	mux.HandleFunc("POST /api/v4/{command}", c.serveCommand)

	c.Server = httptest.NewServer(mux)
	t.Cleanup(c.Close)
	return c
}

// Host returns host:port of the proxy.
func (c *Cluster) Host() string {
	return strings.TrimPrefix(c.URL, "http://")
}

// AddQuery registers a query known to the tracker.
func (c *Cluster) AddQuery(q map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries[q["id"].(string)] = q
}

func (c *Cluster) serveCommand(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	command := r.PathValue("command")
	c.Commands = append(c.Commands, command)
	if command == c.FailCommand {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"tracker is down"}`)
		return
	}

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")

	switch command {
	case "get_query":
		q, ok := c.Queries[body["query_id"].(string)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"no such query"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	case "start_query":
		c.Started = append(c.Started, body)
		id := "started-" + strconv.Itoa(len(c.Started))
		c.Queries[id] = map[string]any{
			"id": id, "query": body["query"], "engine": body["engine"], "settings": map[string]any{}, "state": "running",
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"query_id": id})
	case "abort_query":
		if q, ok := c.Queries[body["query_id"].(string)]; ok {
			q["state"] = "aborted"
		}
		_, _ = io.WriteString(w, `{}`)
	case "list_queries":
		c.LastList = body
		items := make([]map[string]any, 0, len(c.Queries))
		for _, q := range c.Queries {
			items = append(items, q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"queries": items, "incomplete": false})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// LastListRequest returns the body of the last list_queries request.
func (c *Cluster) LastListRequest() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.LastList
}

// CommandsSeen returns the tracker commands received so far.
func (c *Cluster) CommandsSeen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Commands...)
}

// WriteConfig writes a ytconsole.yaml pointing the given clusters at their fake proxies
// and returns its path.
func WriteConfig(t *testing.T, clusters map[string]*Cluster, extra string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("telemetry:\n  enabled: false\nclusters:\n")
	for id, c := range clusters {
		b.WriteString("  " + id + ":\n    proxy: " + c.Host() + "\n")
	}
	b.WriteString(extra)

	path := filepath.Join(t.TempDir(), "ytconsole.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
