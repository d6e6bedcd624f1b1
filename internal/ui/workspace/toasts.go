package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ytsaurus/ytconsole/internal/apierr"
)

const maxToasts = 50

// ToastKind distinguishes success and error notifications.
type ToastKind string

// Toast kinds.
const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is one side-channel notification shown to the user.
type Toast struct {
	Name  string            `json:"name"`
	Kind  ToastKind         `json:"kind"`
	Title string            `json:"title"`
	Error *apierr.ErrorInfo `json:"error,omitempty"`
	Time  time.Time         `json:"time"`
}

// ToastLog keeps the most recent toasts of a workspace.
type ToastLog struct {
	mu       sync.Mutex
	toasts   []Toast
	logger   *slog.Logger
	onChange func()
	now      func() time.Time
}

// NewToastLog creates an empty ToastLog. onChange may be nil.
func NewToastLog(logger *slog.Logger, onChange func()) *ToastLog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ToastLog{logger: logger, onChange: onChange, now: time.Now}
}

// Success implements querytracker.Toaster.
func (l *ToastLog) Success(ctx context.Context, name, title string) {
	l.logger.InfoContext(ctx, title, "toaster", name)
	l.add(Toast{Name: name, Kind: ToastSuccess, Title: title})
}

// Error implements querytracker.Toaster.
func (l *ToastLog) Error(ctx context.Context, name, title string, err error) {
	info := apierr.Prepare(title+" ", err)
	l.logger.ErrorContext(ctx, title, "toaster", name, "error", info)
	l.add(Toast{Name: name, Kind: ToastError, Title: title, Error: info})
}

func (l *ToastLog) add(t Toast) {
	l.mu.Lock()
	t.Time = l.now()
	l.toasts = append(l.toasts, t)
	if len(l.toasts) > maxToasts {
		l.toasts = l.toasts[len(l.toasts)-maxToasts:]
	}
	hook := l.onChange
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// List returns the toasts, oldest first.
func (l *ToastLog) List() []Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Toast(nil), l.toasts...)
}

// Clear drops every toast.
func (l *ToastLog) Clear() {
	l.mu.Lock()
	l.toasts = nil
	l.mu.Unlock()
}
