package querytracker

import "sync"

// Store holds one query State and applies signals to it.
// Each composition root (browser session, CLI invocation) owns its own Store.
type Store struct {
	mu       sync.RWMutex
	state    State
	onChange func(State)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOnChange registers a hook called after every dispatch with the new state.
func WithOnChange(fn func(State)) StoreOption {
	return func(s *Store) {
		s.onChange = fn
	}
}

// NewStore creates a Store in the initial state.
func NewStore(params Params, opts ...StoreOption) *Store {
	s := &Store{state: InitialState(params)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces sig into the current state and returns the new state.
func (s *Store) Dispatch(sig Signal) State {
	s.mu.Lock()
	next := Reduce(s.state, sig)
	s.state = next
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook(next)
	}
	return next
}

// CurrentQuery returns the loaded query, or nil.
func (s *Store) CurrentQuery() *QueryItem {
	return s.State().QueryItem
}

// Draft returns the current draft.
func (s *Store) Draft() DraftQuery {
	return s.State().Draft
}
