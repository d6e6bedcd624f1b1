// Package notifier fans workspace events out to the SSE streams watching a
// workspace.
package notifier

import (
	"strings"
	"sync"
)

// Event is a set of workspace changes. Events published while a subscriber
// is busy are merged into one set.
type Event uint8

// Workspace events.
const (
	StateChanged Event = 1 << iota
	ListChanged
	ToastsChanged
	// Closed means the workspace was dropped; subscribers should stop.
	Closed
)

// Has reports whether e contains all of other.
func (e Event) Has(other Event) bool {
	return e&other == other
}

func (e Event) String() string {
	if e == 0 {
		return "none"
	}
	var names []string
	for _, ev := range []struct {
		bit  Event
		name string
	}{
		{StateChanged, "state"},
		{ListChanged, "list"},
		{ToastsChanged, "toasts"},
		{Closed, "closed"},
	} {
		if e.Has(ev.bit) {
			names = append(names, ev.name)
		}
	}
	return strings.Join(names, "|")
}

// Subscription receives the events of one Notifier.
type Subscription struct {
	wake chan struct{}

	mu      sync.Mutex
	pending Event
}

// Wake returns a channel that is signaled when events are pending.
func (s *Subscription) Wake() <-chan struct{} {
	return s.wake
}

// Take returns the pending events and clears them.
func (s *Subscription) Take() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.pending
	s.pending = 0
	return ev
}

func (s *Subscription) add(ev Event) {
	s.mu.Lock()
	s.pending |= ev
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
		// Already signaled; the events were merged above.
	}
}

// Notifier publishes the events of one workspace.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a subscriber. Subscribing to a closed Notifier yields a
// subscription that already holds Closed.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() *Subscription {
	sub := &Subscription{wake: make(chan struct{}, 1)}

	n.mu.Lock()
	closed := n.closed
	if !closed {
		n.subs[sub] = struct{}{}
	}
	n.mu.Unlock()

	if closed {
		sub.add(Closed)
	}
	return sub
}

// Unsubscribe removes a subscriber.
func (n *Notifier) Unsubscribe(sub *Subscription) {
	n.mu.Lock()
	delete(n.subs, sub)
	n.mu.Unlock()
}

// Publish delivers ev to every subscriber without blocking.
// Publishing on a closed Notifier is a no-op.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	for sub := range n.subs {
		sub.add(ev)
	}
}

// Close publishes Closed to the current subscribers and to every later one.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for sub := range n.subs {
		sub.add(Closed)
	}
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
