package querytracker

// Lifecycle is the coarse status of the query-loading state machine.
type Lifecycle string

// Lifecycle states.
const (
	LifecycleInit    Lifecycle = "init"
	LifecycleLoading Lifecycle = "loading"
	LifecycleReady   Lifecycle = "ready"
	LifecycleError   Lifecycle = "error"
)

// Params are deep-link overrides taken from the URL.
type Params struct {
	Engine string `json:"engine,omitempty"`
	Query  string `json:"query,omitempty"`
}

// State is the current-query slice.
type State struct {
	QueryItem *QueryItem `json:"queryItem,omitempty"`
	Draft     DraftQuery `json:"draft"`
	Params    Params     `json:"params"`
	Lifecycle Lifecycle  `json:"state"`
}

// DefaultDraft returns the empty draft new states start with.
func DefaultDraft() DraftQuery {
	return DraftQuery{
		Engine:   DefaultEngine,
		Query:    "",
		Settings: Settings{},
	}
}

// InitialState returns the state before anything is loaded.
func InitialState(params Params) State {
	return State{
		Draft:     DefaultDraft(),
		Params:    params,
		Lifecycle: LifecycleInit,
	}
}

// Signal is a state transition request consumed by Reduce.
type Signal interface {
	signal()
}

// LoadStarted marks the start of a query load.
type LoadStarted struct{}

// QuerySet replaces the current query and resets the draft from it.
type QuerySet struct {
	Item *QueryItem
}

// QueryUpdated replaces the current query without touching the draft.
type QueryUpdated struct {
	Item *QueryItem
}

// LoadFailed moves the lifecycle to error.
type LoadFailed struct {
	Err error
}

// DraftPatch holds the draft fields to overwrite. Nil fields are left as is.
type DraftPatch struct {
	Query    *string  `json:"query,omitempty"`
	Engine   *Engine  `json:"engine,omitempty"`
	Settings Settings `json:"settings,omitempty"`
}

// DraftPatched shallow-merges Patch into the draft.
type DraftPatched struct {
	Patch DraftPatch
}

func (LoadStarted) signal()  {}
func (QuerySet) signal()     {}
func (QueryUpdated) signal() {}
func (LoadFailed) signal()   {}
func (DraftPatched) signal() {}

// Reduce returns the state that follows s after sig. It never modifies s.
// Unknown signals return s unchanged.
func Reduce(s State, sig Signal) State {
	switch sig := sig.(type) {
	case LoadStarted:
		s.Lifecycle = LifecycleLoading
	case QuerySet:
		s.QueryItem = sig.Item
		s.Draft = draftFrom(sig.Item)
		s.Lifecycle = LifecycleReady
	case QueryUpdated:
		s.QueryItem = sig.Item
	case LoadFailed:
		s.Lifecycle = LifecycleError
	case DraftPatched:
		s.Draft = patchDraft(s.Draft, sig.Patch)
	}
	return s
}

// draftFrom merges the item over the default draft; zero fields keep the default.
func draftFrom(item *QueryItem) DraftQuery {
	d := DefaultDraft()
	if item == nil {
		return d
	}
	d.Query = item.Query
	if item.Engine != "" {
		d.Engine = item.Engine
	}
	if item.Settings != nil {
		d.Settings = item.Settings.Clone()
	}
	return d
}

func patchDraft(d DraftQuery, p DraftPatch) DraftQuery {
	if p.Query != nil {
		d.Query = *p.Query
	}
	if p.Engine != nil {
		d.Engine = *p.Engine
	}
	if p.Settings != nil {
		d.Settings = p.Settings.Clone()
	}
	return d
}
