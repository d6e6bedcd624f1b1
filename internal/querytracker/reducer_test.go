package querytracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type unknownSignal struct{}

func (unknownSignal) signal() {}

func strPtr(s string) *string { return &s }

func enginePtr(e Engine) *Engine { return &e }

func TestReduce(t *testing.T) {
	loaded := &QueryItem{ID: "q1", Query: "SELECT 1", Engine: EngineCHYT, Settings: Settings{"cluster": "ch_public"}}
	base := InitialState(Params{Engine: "chyt"})

	tests := []struct {
		name   string
		state  State
		signal Signal
		want   State
	}{
		{
			name:   "load started only changes lifecycle",
			state:  base,
			signal: LoadStarted{},
			want:   State{Draft: DefaultDraft(), Params: Params{Engine: "chyt"}, Lifecycle: LifecycleLoading},
		},
		{
			name:   "query set replaces item and resets draft",
			state:  Reduce(base, DraftPatched{Patch: DraftPatch{Query: strPtr("unsaved")}}),
			signal: QuerySet{Item: loaded},
			want: State{
				QueryItem: loaded,
				Draft:     DraftQuery{Query: "SELECT 1", Engine: EngineCHYT, Settings: Settings{"cluster": "ch_public"}},
				Params:    Params{Engine: "chyt"},
				Lifecycle: LifecycleReady,
			},
		},
		{
			name:   "query set keeps defaults for missing fields",
			state:  base,
			signal: QuerySet{Item: &QueryItem{ID: "q2", Query: "x"}},
			want: State{
				QueryItem: &QueryItem{ID: "q2", Query: "x"},
				Draft:     DraftQuery{Query: "x", Engine: DefaultEngine, Settings: Settings{}},
				Params:    Params{Engine: "chyt"},
				Lifecycle: LifecycleReady,
			},
		},
		{
			name:   "query updated leaves draft and lifecycle",
			state:  Reduce(base, LoadStarted{}),
			signal: QueryUpdated{Item: loaded},
			want:   State{QueryItem: loaded, Draft: DefaultDraft(), Params: Params{Engine: "chyt"}, Lifecycle: LifecycleLoading},
		},
		{
			name:   "load failed reaches error",
			state:  Reduce(base, LoadStarted{}),
			signal: LoadFailed{Err: errors.New("boom")},
			want:   State{Draft: DefaultDraft(), Params: Params{Engine: "chyt"}, Lifecycle: LifecycleError},
		},
		{
			name:   "unknown signal passes through",
			state:  base,
			signal: unknownSignal{},
			want:   base,
		},
		{
			name:   "nil signal passes through",
			state:  base,
			signal: nil,
			want:   base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.signal))
		})
	}
}

func TestReduce_DraftPatchedChangesOnlyGivenFields(t *testing.T) {
	item := &QueryItem{ID: "q1", Query: "old", Engine: EngineQL, Settings: Settings{"a": 1.0}}
	before := Reduce(InitialState(Params{}), QuerySet{Item: item})

	after := Reduce(before, DraftPatched{Patch: DraftPatch{Query: strPtr("X")}})

	assert.Equal(t, "X", after.Draft.Query)
	assert.Equal(t, EngineQL, after.Draft.Engine)
	assert.Equal(t, Settings{"a": 1.0}, after.Draft.Settings)
	assert.Same(t, before.QueryItem, after.QueryItem)
	assert.Equal(t, before.Lifecycle, after.Lifecycle)
	assert.Equal(t, before.Params, after.Params)

	engineOnly := Reduce(after, DraftPatched{Patch: DraftPatch{Engine: enginePtr(EngineSPYT)}})
	assert.Equal(t, "X", engineOnly.Draft.Query)
	assert.Equal(t, EngineSPYT, engineOnly.Draft.Engine)
}

func TestReduce_DoesNotShareSettings(t *testing.T) {
	item := &QueryItem{ID: "q1", Settings: Settings{"a": 1.0}}
	s := Reduce(InitialState(Params{}), QuerySet{Item: item})

	patched := Reduce(s, DraftPatched{Patch: DraftPatch{Settings: Settings{"b": 2.0}}})

	assert.Equal(t, Settings{"a": 1.0}, item.Settings, "item settings untouched")
	assert.Equal(t, Settings{"a": 1.0}, s.Draft.Settings, "previous state untouched")
	assert.Equal(t, Settings{"b": 2.0}, patched.Draft.Settings)
}

func TestStore_DispatchNotifies(t *testing.T) {
	var seen []Lifecycle
	store := NewStore(Params{}, WithOnChange(func(s State) {
		seen = append(seen, s.Lifecycle)
	}))

	assert.Equal(t, LifecycleInit, store.State().Lifecycle)
	store.Dispatch(LoadStarted{})
	store.Dispatch(QuerySet{Item: &QueryItem{ID: "q"}})

	assert.Equal(t, []Lifecycle{LifecycleLoading, LifecycleReady}, seen)
	assert.Equal(t, "q", store.CurrentQuery().ID)
	assert.Equal(t, DefaultEngine, store.Draft().Engine)
}
