// Package apierr provides the transport error wrapper used by cluster API
// clients and the normalized error shape reported to the UI.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CorrelationHeader is the header used to correlate requests across cluster services.
const CorrelationHeader = "X-YT-Correlation-Id"

// HTTPError wraps a failed call to a cluster service.
// Status is zero when the request never got a response (network failure, timeout).
type HTTPError struct {
	Method        string
	URL           string
	Status        int
	Body          any // decoded JSON when possible, raw text otherwise, nil when empty
	CorrelationID string
	Err           error
}

func (e *HTTPError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	if msg := bodyMessage(e.Body); msg != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds an HTTPError from a non-2xx response body.
func NewHTTPError(method, url string, status int, body []byte, correlationID string) *HTTPError {
	return &HTTPError{
		Method:        method,
		URL:           url,
		Status:        status,
		Body:          DecodeBody(body),
		CorrelationID: correlationID,
	}
}

// DecodeBody turns a response body into a JSON value, a trimmed string, or nil.
func DecodeBody(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	return trimmed
}

// bodyMessage extracts the "message" field YT errors carry.
func bodyMessage(body any) string {
	switch b := body.(type) {
	case string:
		return b
	case map[string]any:
		if msg, ok := b["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or fallback when there is none.
func StatusOf(err error, fallback int) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		return httpErr.Status
	}
	return fallback
}

// CorrelationIDOf returns the correlation id of the failed request, if any.
func CorrelationIDOf(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.CorrelationID
	}
	return ""
}

// ErrorInfo is the normalized error shape reported to callers.
type ErrorInfo struct {
	Message     string `json:"message" yaml:"message"`
	Code        *int   `json:"code,omitempty" yaml:"code,omitempty"`
	InnerErrors []any  `json:"inner_errors" yaml:"inner_errors"`
}

// Prepare normalizes err under a human message prefix.
// For transport errors the HTTP status becomes Code and the response body the
// only inner error; any other error is itself the inner error.
func Prepare(message string, err error) *ErrorInfo {
	info := &ErrorInfo{
		Message:     message + ":" + errString(err),
		InnerErrors: []any{},
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status != 0 {
			code := httpErr.Status
			info.Code = &code
		}
		if httpErr.Body != nil {
			info.InnerErrors = append(info.InnerErrors, httpErr.Body)
		}
		return info
	}

	if err != nil {
		info.InnerErrors = append(info.InnerErrors, map[string]any{"message": err.Error()})
	}
	return info
}

// LogValue implements slog.LogValuer.
func (e *ErrorInfo) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("message", e.Message)}
	if e.Code != nil {
		attrs = append(attrs, slog.Int("code", *e.Code))
	}
	attrs = append(attrs, slog.Any("inner_errors", e.InnerErrors))
	return slog.GroupValue(attrs...)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
