// Package common provides shared helpers for UI features.
package common

import (
	"encoding/json"
	"net/http"

	"github.com/ytsaurus/ytconsole/internal/apierr"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a normalized ErrorInfo. The status is the
// upstream HTTP status carried by err, or fallback.
func WriteError(w http.ResponseWriter, message string, err error, fallback int) {
	WriteJSON(w, apierr.StatusOf(err, fallback), apierr.Prepare(message, err))
}

// WriteMessage writes a plain error message in ErrorInfo form.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, &apierr.ErrorInfo{Message: message, InnerErrors: []any{}})
}
