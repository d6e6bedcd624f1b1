package querytracker

import (
	"context"
	"sync"
)

// ListRefresher refreshes the queries list after a query starts or stops.
type ListRefresher interface {
	Refresh(ctx context.Context) error
}

// QueriesList keeps the last fetched page of queries.
type QueriesList struct {
	api    API
	params ListParams

	mu        sync.RWMutex
	items     []QueryItem
	lifecycle Lifecycle
	err       error
	onChange  func()
}

// NewQueriesList creates a list backed by api.
func NewQueriesList(api API, params ListParams) *QueriesList {
	return &QueriesList{
		api:       api,
		params:    params,
		lifecycle: LifecycleInit,
	}
}

// OnChange registers a hook called after every refresh.
func (l *QueriesList) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Params returns the list filter.
func (l *QueriesList) Params() ListParams {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.params
}

// SetParams replaces the list filter used by the next Refresh.
func (l *QueriesList) SetParams(params ListParams) {
	l.mu.Lock()
	l.params = params
	l.mu.Unlock()
}

// Refresh fetches the list. On failure the previous items are kept.
func (l *QueriesList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.lifecycle = LifecycleLoading
	params := l.params
	l.mu.Unlock()

	items, err := l.api.ListQueries(ctx, params)

	l.mu.Lock()
	if err != nil {
		l.lifecycle = LifecycleError
		l.err = err
	} else {
		l.items = items
		l.lifecycle = LifecycleReady
		l.err = nil
	}
	hook := l.onChange
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

// Items returns a copy of the last fetched items.
func (l *QueriesList) Items() []QueryItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]QueryItem(nil), l.items...)
}

// Status returns the list lifecycle and last error.
func (l *QueriesList) Status() (Lifecycle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lifecycle, l.err
}
