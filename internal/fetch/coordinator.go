// Package fetch converts accepted windows into page requests against a
// data provider.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"scrollgrid/internal/domain"
	"scrollgrid/internal/provider"
)

var (
	// ErrInvalidWindow is a precondition violation: the window spans no rows
	ErrInvalidWindow = errors.New("degenerate window")
	// ErrFetchInFlight is returned when the same window of the same epoch is
	// already being fetched
	ErrFetchInFlight = errors.New("window already in flight")
)

// Request is one fetch, tagged with the epoch it was issued under
type Request struct {
	Epoch  uint64
	Window domain.Window
	Query  domain.Query
}

type key struct {
	epoch  uint64
	window domain.Window
}

// PageIndex returns the 0-based page index ceil(start / size) of a window.
// The window must not be degenerate.
func PageIndex(w domain.Window) int {
	size := w.Size()
	return (w.Start + size - 1) / size
}

// PageNumber returns the 1-based page number sent to providers. Backends
// that number pages from 0 should be given PageIndex instead.
func PageNumber(w domain.Window) int {
	return PageIndex(w) + 1
}

// Coordinator issues exactly one provider call per accepted window
type Coordinator struct {
	provider    provider.Provider
	searchField string

	mu       sync.Mutex
	inflight map[key]struct{}
}

// NewCoordinator creates a fetch coordinator. searchField names the item
// field the provider should search in.
func NewCoordinator(p provider.Provider, searchField string) *Coordinator {
	return &Coordinator{
		provider:    p,
		searchField: searchField,
		inflight:    make(map[key]struct{}),
	}
}

// BuildRequest derives the provider request for a window and query
func (c *Coordinator) BuildRequest(w domain.Window, q domain.Query) domain.PageRequest {
	return domain.PageRequest{
		Page:        PageNumber(w),
		PageSize:    w.Size(),
		SearchField: c.searchField,
		SearchTerm:  q.SearchTerm,
		Sort:        q.Sort,
	}
}

// Fetch retrieves the page for req.Window. It never retries; retry policy
// belongs to the provider's transport.
func (c *Coordinator) Fetch(ctx context.Context, req Request) (domain.Page, error) {
	if req.Window.Degenerate() {
		return domain.Page{}, fmt.Errorf("fetch %s: %w", req.Window, ErrInvalidWindow)
	}

	k := key{epoch: req.Epoch, window: req.Window}
	c.mu.Lock()
	if _, busy := c.inflight[k]; busy {
		c.mu.Unlock()
		return domain.Page{}, fmt.Errorf("fetch %s: %w", req.Window, ErrFetchInFlight)
	}
	c.inflight[k] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, k)
		c.mu.Unlock()
	}()

	pr := c.BuildRequest(req.Window, req.Query)
	page, err := c.provider.FetchPage(ctx, pr)
	if err != nil {
		return domain.Page{}, provider.AsError(err, pr.Page)
	}
	return page, nil
}

// InFlight returns the number of outstanding fetches
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}
