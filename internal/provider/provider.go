// Package provider defines the paged data-provider contract used by the
// fetch coordinator, and an in-memory implementation of it.
package provider

import (
	"context"
	"errors"
	"fmt"

	"scrollgrid/internal/domain"
)

// Provider answers one page request at a time
type Provider interface {
	FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error)
}

// Func adapts a plain function to the Provider interface
type Func func(ctx context.Context, req domain.PageRequest) (domain.Page, error)

// FetchPage implements Provider
func (f Func) FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	return f(ctx, req)
}

// Error reports that a provider failed to answer a fetch
type Error struct {
	Op         string // e.g. "fetch page"
	Page       int
	StatusCode int // HTTP status when the failure came from a server, 0 otherwise
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %d", e.Op, e.Page)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError wraps err as a *Error unless it already is one
func AsError(err error, page int) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Op: "fetch page", Page: page, Err: err}
}

// ErrUnavailable is returned by providers that were told to fail
var ErrUnavailable = errors.New("provider unavailable")
