package querytracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytsaurus/ytconsole/internal/testutil"
)

func TestQueriesList_RefreshKeepsItemsOnError(t *testing.T) {
	api := newFakeAPI()
	api.list = []QueryItem{{ID: "a"}}
	list := NewQueriesList(api, ListParams{})

	changes := 0
	list.OnChange(func() { changes++ })

	require.NoError(t, list.Refresh(context.Background()))
	lifecycle, err := list.Status()
	assert.Equal(t, LifecycleReady, lifecycle)
	assert.NoError(t, err)

	api.listErr = errors.New("unavailable")
	require.Error(t, list.Refresh(context.Background()))

	assert.Equal(t, []QueryItem{{ID: "a"}}, list.Items())
	lifecycle, err = list.Status()
	assert.Equal(t, LifecycleError, lifecycle)
	assert.EqualError(t, err, "unavailable")
	assert.Equal(t, 2, changes)
}

func TestQueriesList_SetParams(t *testing.T) {
	api := newFakeAPI()
	list := NewQueriesList(api, ListParams{Limit: 20})

	params := list.Params()
	params.Filter = "SELECT"
	params.Engine = EngineCHYT
	list.SetParams(params)
	require.NoError(t, list.Refresh(context.Background()))

	require.Len(t, api.listedBy, 1)
	assert.Equal(t, ListParams{Engine: EngineCHYT, Filter: "SELECT", Limit: 20}, api.listedBy[0])
	assert.Equal(t, params, list.Params())
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	assert.Empty(t, h.Current())

	h.Push("/a/queries/1")
	h.Push("/a/queries/2")

	assert.Equal(t, "/a/queries/2", h.Current())
	assert.Equal(t, []string{"/a/queries/1", "/a/queries/2"}, h.Entries())

	var got string
	NavigatorFunc(func(p string) { got = p }).Push("/x")
	assert.Equal(t, "/x", got)
}

func TestCreateQueryURL(t *testing.T) {
	assert.Equal(t, "/hahn/queries/abc-123", CreateQueryURL("hahn", "abc-123"))
	assert.Equal(t, "/my%20cluster/queries/q", CreateQueryURL("my cluster", "q"))
}

func TestWrapByToaster(t *testing.T) {
	toaster := &fakeToaster{}

	res, err := WrapByToaster(context.Background(), toaster, ToastOptions{Name: "n", SuccessTitle: "done"},
		func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, res)
	assert.Equal(t, []string{"n"}, toaster.successes)

	boom := errors.New("boom")
	_, err = WrapByToaster(context.Background(), toaster, ToastOptions{Name: "n", ErrorTitle: "failed"},
		func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"n: failed"}, toaster.errors)

	_, err = WrapByToaster(context.Background(), nil, ToastOptions{},
		func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestLogToaster(t *testing.T) {
	logger, buf := testutil.NewCapturingLogger(t)
	toaster := LogToaster{Logger: logger}

	toaster.Error(context.Background(), "load_query", "Failed to load query", errors.New("boom"))

	lines := buf.Lines("Failed to load query")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "toaster=load_query")
	assert.Contains(t, lines[0], "error=boom")
}
