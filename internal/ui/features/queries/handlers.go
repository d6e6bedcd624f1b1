package queries

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/ytsaurus/ytconsole/internal/querytracker"
	"github.com/ytsaurus/ytconsole/internal/ui/features/common"
	"github.com/ytsaurus/ytconsole/internal/ui/notifier"
	"github.com/ytsaurus/ytconsole/internal/ui/workspace"
)

const keepAliveInterval = 25 * time.Second

// Handlers provides HTTP handlers for the queries feature.
type Handlers struct {
	registry     *workspace.Registry
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *workspace.Registry, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		registry:     registry,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// workspace resolves the caller's workspace. The engine and query URL
// parameters seed a workspace created by this request.
func (h *Handlers) workspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	session := common.SessionID(h.sessionStore, w, r)
	params := querytracker.Params{
		Engine: r.URL.Query().Get("engine"),
		Query:  r.URL.Query().Get("query"),
	}

	ws, _, err := h.registry.Get(session, chi.URLParam(r, "cluster"), params)
	if err != nil {
		if errors.Is(err, workspace.ErrUnknownCluster) {
			common.WriteMessage(w, http.StatusNotFound, err.Error())
		} else {
			common.WriteMessage(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return ws, true
}

func stateOf(ws *workspace.Workspace) StateResponse {
	return StateResponse{State: ws.Store.State(), Location: ws.History.Current()}
}

func listOf(ws *workspace.Workspace) ListResponse {
	lifecycle, _ := ws.List.Status()
	items := ws.List.Items()
	if items == nil {
		items = []querytracker.QueryItem{}
	}
	return ListResponse{Items: items, State: lifecycle}
}

// State returns the workspace state, initializing it on first use
// (query_id loads a query, engine and query seed an empty one).
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Init(r.Context(), r.URL.Query().Get("query_id"))
	common.WriteJSON(w, http.StatusOK, stateOf(ws))
}

// Load makes the query current. A failed load falls back to an empty query
// and is reported through the toasts, so the response is always the state.
func (h *Handlers) Load(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Controller.LoadQuery(r.Context(), chi.URLParam(r, "id"))
	common.WriteJSON(w, http.StatusOK, stateOf(ws))
}

// QueryPage is the navigation target of a query: it loads the query and
// records the visit.
func (h *Handlers) QueryPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if ws.History.Current() != r.URL.Path {
		ws.History.Push(querytracker.CreateQueryURL(ws.Cluster.ID, id))
	}
	ws.Controller.LoadQuery(r.Context(), id)
	common.WriteJSON(w, http.StatusOK, stateOf(ws))
}

// New starts an empty query.
func (h *Handlers) New(w http.ResponseWriter, r *http.Request) {
	var signals NewQuerySignals
	if r.ContentLength != 0 {
		if err := datastar.ReadSignals(r, &signals); err != nil {
			common.WriteMessage(w, http.StatusBadRequest, "failed to read signals: "+err.Error())
			return
		}
	}
	engine, err := querytracker.ParseEngine(signals.Engine)
	if err != nil {
		common.WriteJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Message: "invalid query",
			Errors:  map[string]string{"engine": err.Error()},
		})
		return
	}

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Controller.CreateEmptyQuery(engine, signals.Query)
	common.WriteJSON(w, http.StatusOK, stateOf(ws))
}

// PatchDraft merges the given fields into the draft. Invalid fields reject
// the whole patch with 422 and per-field messages.
func (h *Handlers) PatchDraft(w http.ResponseWriter, r *http.Request) {
	// Read signals before anything writes to the response.
	var signals DraftSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		common.WriteMessage(w, http.StatusBadRequest, "failed to read signals: "+err.Error())
		return
	}

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	patch, fieldErrors := toPatch(signals)
	if len(fieldErrors) > 0 {
		common.WriteJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Message: "invalid draft",
			Errors:  fieldErrors,
		})
		return
	}

	ws.Controller.PatchDraft(patch)
	common.WriteJSON(w, http.StatusOK, stateOf(ws))
}

func toPatch(signals DraftSignals) (querytracker.DraftPatch, map[string]string) {
	patch := querytracker.DraftPatch{Query: signals.Query}
	fieldErrors := map[string]string{}

	if signals.Engine != nil {
		engine, err := querytracker.ParseEngine(*signals.Engine)
		if err != nil {
			fieldErrors["engine"] = err.Error()
		} else {
			patch.Engine = &engine
		}
	}

	if signals.Settings != nil {
		settings, errs := querytracker.NormalizeSettings(signals.Settings)
		for key, msg := range errs {
			fieldErrors["settings."+key] = msg
		}
		patch.Settings = settings
	}

	return patch, fieldErrors
}

// Run starts the draft. Upstream failures are returned with their status.
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	id, err := ws.Controller.RunQuery(r.Context())
	if err != nil {
		common.WriteError(w, "Failed to start query ", err, http.StatusBadGateway)
		return
	}
	common.WriteJSON(w, http.StatusOK, RunResponse{QueryID: id, Location: ws.History.Current()})
}

// Abort aborts the current query and returns the reloaded state.
func (h *Handlers) Abort(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.Controller.AbortCurrentQuery(r.Context()); err != nil {
		common.WriteError(w, "Failed to abort query ", err, http.StatusBadGateway)
		return
	}
	common.WriteJSON(w, http.StatusOK, stateOf(ws))
}

// List refreshes and returns the queries list. The user, state, engine and
// filter URL parameters replace the list filter of the workspace when any is
// given.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if q := r.URL.Query(); q.Has("user") || q.Has("state") || q.Has("engine") || q.Has("filter") {
		params := ws.List.Params()
		params.User = q.Get("user")
		params.State = querytracker.QueryStatus(q.Get("state"))
		params.Filter = q.Get("filter")
		params.Engine = ""
		if raw := q.Get("engine"); raw != "" {
			engine, err := querytracker.ParseEngine(raw)
			if err != nil {
				common.WriteMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			params.Engine = engine
		}
		ws.List.SetParams(params)
	}

	if err := ws.List.Refresh(r.Context()); err != nil {
		common.WriteError(w, "Failed to list queries ", err, http.StatusBadGateway)
		return
	}
	common.WriteJSON(w, http.StatusOK, listOf(ws))
}

// Toasts returns the side-channel notifications of the workspace.
func (h *Handlers) Toasts(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	toasts := ws.Toasts.List()
	if toasts == nil {
		toasts = []workspace.Toast{}
	}
	common.WriteJSON(w, http.StatusOK, toasts)
}

// Updates is the long-lived SSE endpoint of a workspace. It sends the
// current signals once and then the parts that changed. The stream ends when
// the workspace is dropped.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	sub := ws.Notifier.Subscribe()
	defer ws.Notifier.Unsubscribe(sub)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	all := notifier.StateChanged | notifier.ListChanged | notifier.ToastsChanged
	if err := sse.MarshalAndPatchSignals(signalsOf(ws, all)); err != nil {
		h.logger.Debug("failed to send initial signals", "error", err)
		return
	}

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-sub.Wake():
			ev := sub.Take()
			if ev.Has(notifier.Closed) {
				h.logger.Debug("workspace closed, ending updates", "cluster", ws.Cluster.ID)
				_ = sse.MarshalAndPatchSignals(UpdateSignals{Closed: true})
				return
			}
			if err := sse.MarshalAndPatchSignals(signalsOf(ws, ev)); err != nil {
				_ = sse.ConsoleError(err)
				// Keep the stream; the next change retries.
			}
		}
	}
}

func signalsOf(ws *workspace.Workspace, ev notifier.Event) UpdateSignals {
	var signals UpdateSignals
	if ev.Has(notifier.StateChanged) {
		state := stateOf(ws)
		signals.QueryState = &state
	}
	if ev.Has(notifier.ListChanged) {
		list := listOf(ws)
		signals.Queries = &list
	}
	if ev.Has(notifier.ToastsChanged) {
		signals.Toasts = ws.Toasts.List()
		if signals.Toasts == nil {
			signals.Toasts = []workspace.Toast{}
		}
	}
	return signals
}
