package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterConfig_ProxyBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cluster ClusterConfig
		want    string
	}{
		{"plain", ClusterConfig{Proxy: "hahn.yt.example.net"}, "http://hahn.yt.example.net"},
		{"secure", ClusterConfig{Proxy: "hahn.yt.example.net", Secure: true}, "https://hahn.yt.example.net"},
		{"trailing slash", ClusterConfig{Proxy: "localhost:8000/"}, "http://localhost:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cluster.ProxyBaseURL())
		})
	}
}

func TestClusterConfig_Validate(t *testing.T) {
	assert.ErrorContains(t, ClusterConfig{}.Validate(), "cluster id is required")
	assert.ErrorContains(t, ClusterConfig{ID: "a"}.Validate(), "proxy is required")
	assert.ErrorContains(t, ClusterConfig{ID: "a", Proxy: "http://x"}.Validate(), "without scheme")
	assert.NoError(t, ClusterConfig{ID: "a", Proxy: "x:80"}.Validate())
}

func TestLoadClustersFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ClustersFileName)
	content := `clusters:
  hahn:
    proxy: hahn.yt.example.net
    secure: true
  local:
    id: local
    name: Local
    proxy: localhost:8000
    query_tracker_stage: testing
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	clusters, err := LoadClustersFile(path)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	assert.Equal(t, "hahn", clusters["hahn"].ID)
	assert.Equal(t, "hahn", clusters["hahn"].Name)
	assert.Equal(t, DefaultQueryTrackerStage, clusters["hahn"].QueryTrackerStage)
	assert.True(t, clusters["hahn"].Secure)
	assert.Equal(t, "testing", clusters["local"].QueryTrackerStage)
	assert.Equal(t, "Local", clusters["local"].Name)
}

func TestLoadClustersFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadClustersFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("clusters:\n  a:\n    id: b\n    proxy: x\n"), 0600))
	_, err = LoadClustersFile(bad)
	assert.ErrorContains(t, err, "does not match")
}

func TestClusterSet(t *testing.T) {
	set := NewClusterSet(map[string]ClusterConfig{
		"b": {ID: "b", Proxy: "b"},
		"a": {ID: "a", Proxy: "a"},
	})
	assert.Equal(t, []string{"a", "b"}, set.IDs())

	c, ok := set.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", c.Proxy)

	all := set.All()
	delete(all, "a")
	_, ok = set.Get("a")
	assert.True(t, ok, "All must return a copy")

	set.Replace(map[string]ClusterConfig{"c": {ID: "c", Proxy: "c"}})
	assert.Equal(t, []string{"c"}, set.IDs())
}
