package common

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding the workspace session.
const SessionName = "ytconsole"

const sessionIDKey = "id"

// SessionID returns the workspace session id of the browser, issuing a new
// one (and setting the cookie) on first visit.
func SessionID(store sessions.Store, w http.ResponseWriter, r *http.Request) string {
	// Get returns a fresh session when the cookie is missing or invalid.
	session, _ := store.Get(r, SessionName)
	if id, ok := session.Values[sessionIDKey].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	session.Values[sessionIDKey] = id
	_ = session.Save(r, w)
	return id
}
