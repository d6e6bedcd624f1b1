package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitWake(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case <-sub.Wake():
		return sub.Take()
	case <-time.After(100 * time.Millisecond):
		t.Fatal("subscriber was not woken")
		return 0
	}
}

func TestEvent_Has(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		check Event
		want  bool
	}{
		{"single", StateChanged, StateChanged, true},
		{"merged", StateChanged | ToastsChanged, ToastsChanged, true},
		{"missing", ListChanged, Closed, false},
		{"partial", StateChanged, StateChanged | ListChanged, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Has(tt.check))
		})
	}
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "none", Event(0).String())
	assert.Equal(t, "state|toasts", (ToastsChanged | StateChanged).String())
	assert.Equal(t, "closed", Closed.String())
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := New()

	sub := n.Subscribe()
	require.NotNil(t, sub)
	assert.Equal(t, 1, n.Len())

	n.Unsubscribe(sub)
	assert.Equal(t, 0, n.Len())

	n.Publish(StateChanged)
	assert.Equal(t, Event(0), sub.Take(), "unsubscribed listeners get nothing")
}

func TestNotifier_PublishReachesEverySubscriber(t *testing.T) {
	n := New()
	first := n.Subscribe()
	second := n.Subscribe()
	defer n.Unsubscribe(first)
	defer n.Unsubscribe(second)

	n.Publish(ListChanged)

	assert.Equal(t, ListChanged, waitWake(t, first))
	assert.Equal(t, ListChanged, waitWake(t, second))
}

func TestNotifier_EventsMergeWhileBusy(t *testing.T) {
	n := New()
	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	// Nobody reads between these: publishing never blocks and nothing is lost.
	done := make(chan struct{})
	go func() {
		n.Publish(StateChanged)
		n.Publish(ToastsChanged)
		n.Publish(StateChanged)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Publish blocked on a busy subscriber")
	}

	assert.Equal(t, StateChanged|ToastsChanged, waitWake(t, sub))
	assert.Equal(t, Event(0), sub.Take())
}

func TestNotifier_Close(t *testing.T) {
	n := New()
	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	n.Close()
	n.Close()
	assert.True(t, waitWake(t, sub).Has(Closed))

	// Changes after close are not delivered.
	n.Publish(StateChanged)
	assert.Equal(t, Event(0), sub.Take())

	// A stream that subscribes after the workspace was dropped ends at once.
	late := n.Subscribe()
	defer n.Unsubscribe(late)
	assert.Equal(t, Closed, waitWake(t, late))
	assert.Equal(t, 1, n.Len())
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := n.Subscribe()
			n.Publish(StateChanged)
			n.Unsubscribe(sub)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Len())
}
