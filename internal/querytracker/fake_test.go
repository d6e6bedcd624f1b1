package querytracker

import (
	"context"
	"sync"
)

// fakeAPI is an in-memory API recording every call.
type fakeAPI struct {
	mu sync.Mutex

	queries  map[string]*QueryItem
	list     []QueryItem
	listedBy []ListParams
	startID  string
	getErr   error
	startErr error
	abortErr error
	listErr  error

	calls   []string
	started []DraftQuery
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{queries: map[string]*QueryItem{}}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) GetQuery(_ context.Context, id string) (*QueryItem, error) {
	f.record("get:" + id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	q, ok := f.queries[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeAPI) StartQuery(_ context.Context, draft DraftQuery) (*StartQueryResult, error) {
	f.record("start")
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, draft)
	return &StartQueryResult{QueryID: f.startID}, nil
}

func (f *fakeAPI) AbortQuery(_ context.Context, id string) error {
	f.record("abort:" + id)
	return f.abortErr
}

func (f *fakeAPI) ListQueries(_ context.Context, params ListParams) ([]QueryItem, error) {
	f.record("list")
	f.mu.Lock()
	f.listedBy = append(f.listedBy, params)
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

type fakeToaster struct {
	errors    []string
	successes []string
}

func (t *fakeToaster) Success(_ context.Context, name, _ string) {
	t.successes = append(t.successes, name)
}

func (t *fakeToaster) Error(_ context.Context, name, title string, _ error) {
	t.errors = append(t.errors, name+": "+title)
}
