package querytracker

import (
	"context"
	"log/slog"
)

// ToastOptions configures WrapByToaster.
type ToastOptions struct {
	Name             string
	ErrorTitle       string
	SuccessTitle     string
	SkipSuccessToast bool
}

// Toaster is the side channel informing the user about request outcomes.
type Toaster interface {
	Success(ctx context.Context, name, title string)
	Error(ctx context.Context, name, title string, err error)
}

// WrapByToaster runs fn and reports its outcome to t. The result and error
// of fn are returned unchanged.
func WrapByToaster[T any](ctx context.Context, t Toaster, opts ToastOptions, fn func(ctx context.Context) (T, error)) (T, error) {
	res, err := fn(ctx)
	if t == nil {
		return res, err
	}
	if err != nil {
		t.Error(ctx, opts.Name, opts.ErrorTitle, err)
		return res, err
	}
	if !opts.SkipSuccessToast {
		t.Success(ctx, opts.Name, opts.SuccessTitle)
	}
	return res, nil
}

// LogToaster reports toasts through a structured logger.
type LogToaster struct {
	Logger *slog.Logger
}

// Success implements Toaster.
func (t LogToaster) Success(ctx context.Context, name, title string) {
	if t.Logger != nil {
		t.Logger.InfoContext(ctx, title, "toaster", name)
	}
}

// Error implements Toaster.
func (t LogToaster) Error(ctx context.Context, name, title string, err error) {
	if t.Logger != nil {
		t.Logger.ErrorContext(ctx, title, "toaster", name, "error", err)
	}
}
