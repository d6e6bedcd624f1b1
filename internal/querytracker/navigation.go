package querytracker

import (
	"net/url"
	"sync"
)

// Navigator receives navigation side effects.
type Navigator interface {
	Push(path string)
}

// CreateQueryURL returns the console path of a query on a cluster.
func CreateQueryURL(cluster, queryID string) string {
	return "/" + url.PathEscape(cluster) + "/queries/" + url.PathEscape(queryID)
}

// History is an in-memory Navigator keeping every pushed entry.
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Push implements Navigator.
func (h *History) Push(path string) {
	h.mu.Lock()
	h.entries = append(h.entries, path)
	h.mu.Unlock()
}

// Current returns the last pushed entry, or "".
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Push implements Navigator.
func (f NavigatorFunc) Push(path string) { f(path) }
