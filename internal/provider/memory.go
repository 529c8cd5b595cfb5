package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"scrollgrid/internal/domain"
)

var (
	locations = []string{"Brno", "Austin", "Cork", "Singapore", "Lisbon", "Prague"}
	statuses  = []string{"status_up", "status_up", "status_up", "status_inactive", "status_down", "status_warning"}
	lorem     = []string{
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		"Sed ut perspiciatis unde omnis iste natus error sit.",
		"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.",
		"Duis aute irure dolor in reprehenderit in voluptate velit esse cillum dolore eu fugiat nulla pariatur.",
		"Excepteur sint occaecat cupidatat non proident, sunt in culpa qui officia deserunt mollit anim id est laborum.",
		"Nemo enim ipsam voluptatem quia voluptas sit aspernatur aut odit aut fugit.",
		"Neque porro quisquam est, qui dolorem ipsum quia dolor sit amet, consectetur.",
		"Quis autem vel eum iure reprehenderit qui in ea voluptate.",
		"At vero eos et accusamus et iusto odio dignissimos ducimus qui blanditiis praesentium voluptatum deleniti atque corrupti.",
	}
)

// GenerateItems builds n deterministic server rows for the given seed
func GenerateItems(n int, seed int64) []domain.Item {
	rng := rand.New(rand.NewSource(seed))
	items := make([]domain.Item, n)
	for i := range items {
		var name string
		if rng.Intn(3) == 0 {
			name = fmt.Sprintf("FOCUS-SVR-%06d", rng.Intn(1000000))
		} else {
			name = fmt.Sprintf("Man-LT-%06X", rng.Intn(0xFFFFFF))
		}
		items[i] = domain.Item{
			Position:    i + 1,
			Name:        name,
			Location:    locations[rng.Intn(len(locations))],
			Description: lorem[rng.Intn(len(lorem))],
			Status:      statuses[rng.Intn(len(statuses))],
		}
	}
	return items
}

// MemoryOption configures a Memory provider
type MemoryOption func(*Memory)

// WithLatency delays every answer, honouring context cancellation
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.latency = d
	}
}

// WithFailOn makes the provider fail requests matching fn
func WithFailOn(fn func(domain.PageRequest) bool) MemoryOption {
	return func(m *Memory) {
		m.failOn = fn
	}
}

// Memory serves pages from an in-memory item slice with real search,
// sort and paging
type Memory struct {
	mu      sync.RWMutex
	items   []domain.Item
	latency time.Duration
	failOn  func(domain.PageRequest) bool
	calls   int
}

// NewMemory creates a provider over a copy of items
func NewMemory(items []domain.Item, opts ...MemoryOption) *Memory {
	m := &Memory{items: append([]domain.Item(nil), items...)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetItems replaces the backing data
func (m *Memory) SetItems(items []domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]domain.Item(nil), items...)
}

// Calls returns how many page requests were served or failed
func (m *Memory) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// FetchPage implements Provider
func (m *Memory) FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.latency > 0 {
		select {
		case <-ctx.Done():
			return domain.Page{}, &Error{Op: "fetch page", Page: req.Page, Err: ctx.Err()}
		case <-time.After(m.latency):
		}
	}
	if m.failOn != nil && m.failOn(req) {
		return domain.Page{}, &Error{Op: "fetch page", Page: req.Page, Err: ErrUnavailable}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Query(m.items, req)
}

// Query applies search, sort and paging to items. It is shared by the
// in-memory provider and the mock HTTP server.
func Query(items []domain.Item, req domain.PageRequest) (domain.Page, error) {
	if req.Page < 1 {
		return domain.Page{}, &Error{Op: "fetch page", Page: req.Page, StatusCode: 400, Err: fmt.Errorf("page must be >= 1")}
	}
	if req.PageSize <= 0 {
		return domain.Page{}, &Error{Op: "fetch page", Page: req.Page, StatusCode: 400, Err: fmt.Errorf("page size must be > 0")}
	}

	matched, err := filter(items, req.SearchField, req.SearchTerm)
	if err != nil {
		return domain.Page{}, &Error{Op: "fetch page", Page: req.Page, StatusCode: 400, Err: err}
	}
	if req.Sort.Active() {
		less, err := lessFor(req.Sort.By)
		if err != nil {
			return domain.Page{}, &Error{Op: "fetch page", Page: req.Page, StatusCode: 400, Err: err}
		}
		desc := req.Sort.Direction == domain.SortDescending
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return less(matched[j], matched[i])
			}
			return less(matched[i], matched[j])
		})
	}

	page := domain.Page{Total: len(matched), Items: []domain.Item{}}
	pages := len(matched) / req.PageSize
	if len(matched)%req.PageSize != 0 {
		pages++
	}
	// compared before multiplying so huge page numbers cannot overflow
	if req.Page > pages {
		return page, nil
	}
	offset := (req.Page - 1) * req.PageSize
	end := offset + req.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = append(page.Items, matched[offset:end]...)
	return page, nil
}

func filter(items []domain.Item, field, term string) ([]domain.Item, error) {
	out := make([]domain.Item, 0, len(items))
	if term == "" {
		return append(out, items...), nil
	}
	get, err := fieldFor(field)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	for _, it := range items {
		if strings.Contains(strings.ToLower(get(it)), needle) {
			out = append(out, it)
		}
	}
	return out, nil
}

func fieldFor(field string) (func(domain.Item) string, error) {
	switch field {
	case "", "name", "item":
		return func(it domain.Item) string { return it.Name }, nil
	case "location":
		return func(it domain.Item) string { return it.Location }, nil
	case "status":
		return func(it domain.Item) string { return it.Status }, nil
	case "description":
		return func(it domain.Item) string { return it.Description }, nil
	case "position":
		return func(it domain.Item) string { return strconv.Itoa(it.Position) }, nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}

func lessFor(field string) (func(a, b domain.Item) bool, error) {
	if field == "position" {
		return func(a, b domain.Item) bool { return a.Position < b.Position }, nil
	}
	get, err := fieldFor(field)
	if err != nil {
		return nil, err
	}
	return func(a, b domain.Item) bool {
		return strings.ToLower(get(a)) < strings.ToLower(get(b))
	}, nil
}
