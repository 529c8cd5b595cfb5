// Package viewport turns the visible-row ranges of a virtually scrolled list
// into distinct, page-aligned fetch windows.
package viewport

import (
	"fmt"

	"scrollgrid/internal/domain"
)

// ResetOptions controls how an observer starts a new session
type ResetOptions struct {
	// EmitFirstPage makes Reset return the origin window immediately.
	// Leave it false when the caller fetches the first page itself.
	EmitFirstPage bool
}

// Observer converts raw visible ranges into windows of exactly PageSize rows.
// Windows are emitted contiguously from the cursor, so a session never skips
// or repeats a window. The observer performs no fetching.
type Observer struct {
	pageSize int
	cursor   int // start of the next window to emit
	last     domain.Range
	seen     bool
}

// NewObserver creates an observer for the given page size
func NewObserver(pageSize int) (*Observer, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	return &Observer{pageSize: pageSize}, nil
}

// PageSize returns the configured page size
func (o *Observer) PageSize() int {
	return o.pageSize
}

// Cursor returns the start row of the next window that would be emitted
func (o *Observer) Cursor() int {
	return o.cursor
}

// Observe records a visible range and returns the windows it newly requires
func (o *Observer) Observe(r domain.Range) []domain.Window {
	if r.Empty() || r.Start < 0 {
		return nil
	}
	if o.seen && r == o.last {
		return nil
	}
	o.seen = true
	o.last = r

	target := alignUp(r.End, o.pageSize)
	if target <= o.cursor {
		return nil
	}

	windows := make([]domain.Window, 0, (target-o.cursor)/o.pageSize)
	for o.cursor < target {
		w := domain.Window{Start: o.cursor, End: o.cursor + o.pageSize}
		windows = append(windows, w)
		o.cursor = w.End
	}
	return windows
}

// Reset clears the observer so the next range starts a new session
func (o *Observer) Reset(opts ResetOptions) []domain.Window {
	o.cursor = 0
	o.seen = false
	o.last = domain.Range{}

	if !opts.EmitFirstPage {
		return nil
	}
	first := domain.Window{Start: 0, End: o.pageSize}
	o.cursor = first.End
	return []domain.Window{first}
}

// Claim marks a window fetched by the caller so it is not emitted again
func (o *Observer) Claim(w domain.Window) {
	if w.End > o.cursor {
		o.cursor = w.End
	}
}

// Rewind moves the cursor back to w so the window can be emitted again,
// typically after its fetch failed
func (o *Observer) Rewind(w domain.Window) {
	if w.Start < o.cursor {
		o.cursor = w.Start
	}
	o.seen = false
}

func alignUp(n, step int) int {
	return ((n + step - 1) / step) * step
}
