// Package coordinator implements the windowed data coordinator: it turns
// viewport and filter events into sequential page fetches, accumulates the
// pages of the current filter epoch and republishes the merged result.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scrollgrid/internal/domain"
	"scrollgrid/internal/eventbus"
	"scrollgrid/internal/fetch"
	"scrollgrid/internal/filters"
	"scrollgrid/internal/metrics"
	"scrollgrid/internal/results"
	"scrollgrid/internal/viewport"
)

// State is the orchestrator's lifecycle state
type State int

const (
	StateIdle State = iota
	StateFetching
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSettled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher retrieves the page for one window. *fetch.Coordinator implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (domain.Page, error)
}

// Options configures a Coordinator
type Options struct {
	PageSize    int
	InitialSort domain.SortSpec
	Logger      zerolog.Logger
	Metrics     metrics.CoordinatorMetrics
}

// FilterChange is a user-initiated search or sort change
type FilterChange struct {
	SearchTerm string
	Sort       domain.SortSpec
}

// Snapshot is a read-only view of the coordinator
type Snapshot struct {
	Items []domain.Item
	Total int
	Busy  bool
	State State
	Epoch uint64
	Query domain.Query
	Done  bool
}

// Coordinator is the windowed data coordinator. All event handling is
// serialized on mu; provider calls run on their own goroutines and re-enter
// through mu on completion.
type Coordinator struct {
	fetcher Fetcher
	pub     eventbus.Publisher
	log     zerolog.Logger
	metrics metrics.CoordinatorMetrics

	mu        sync.Mutex
	observer  *viewport.Observer
	tracker   *filters.Tracker
	acc       *results.Accumulator
	query     domain.Query
	epoch     uint64
	state     State
	busy      bool
	done      bool // no further windows are fetched in this epoch
	requested map[domain.Window]struct{}
	pending   []domain.Window
	closed    bool
	unsubs    []func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator in the Idle state. Nothing is fetched until a
// range is observed or filters are applied.
func New(fetcher Fetcher, pub eventbus.Publisher, opts Options) (*Coordinator, error) {
	observer, err := viewport.NewObserver(opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		fetcher:   fetcher,
		pub:       pub,
		log:       opts.Logger.With().Str("component", "coordinator").Logger(),
		metrics:   opts.Metrics,
		observer:  observer,
		tracker:   filters.NewTracker(),
		acc:       results.New(),
		query:     domain.Query{Sort: opts.InitialSort},
		epoch:     1,
		state:     StateIdle,
		requested: make(map[domain.Window]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	c.tracker.ComputeChange(filters.NewState(c.query, domain.Window{}))
	c.metrics.IncEpochs()
	return c, nil
}

// PageSize returns the configured page size
func (c *Coordinator) PageSize() int {
	return c.observer.PageSize()
}

// ApplyFilters starts a new epoch for the given search and sort. It is
// always invalidating: accumulated content is dropped and the first page is
// fetched for the new query.
func (c *Coordinator) ApplyFilters(change FilterChange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.applyLocked(domain.Query{SearchTerm: change.SearchTerm, Sort: change.Sort})
}

// Search applies a new search term, keeping the active sort
func (c *Coordinator) Search(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.applyLocked(domain.Query{SearchTerm: term, Sort: c.query.Sort})
}

// ClearSearch removes the search term, keeping the active sort
func (c *Coordinator) ClearSearch() {
	c.Search("")
}

// SortBy applies a new sort, keeping the active search term
func (c *Coordinator) SortBy(sort domain.SortSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.applyLocked(domain.Query{SearchTerm: c.query.SearchTerm, Sort: sort})
}

func (c *Coordinator) applyLocked(q domain.Query) {
	c.query = q
	origin := domain.Window{Start: 0, End: c.observer.PageSize()}
	c.tracker.ComputeChange(filters.NewState(q, origin))

	c.log.Info().
		Str("search", q.SearchTerm).
		Str("sort", q.Sort.String()).
		Msg("filters applied")

	c.restartLocked()
	c.observer.Reset(viewport.ResetOptions{EmitFirstPage: false})
	c.observer.Claim(origin)
	c.requested[origin] = struct{}{}
	c.issueLocked(origin)
}

// ObserveRange handles a visible-range event from the viewport source
func (c *Coordinator) ObserveRange(r domain.Range) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	for _, w := range c.observer.Observe(r) {
		c.acceptLocked(w)
	}
}

// Reload rebuilds the list from the first page under the active filters
func (c *Coordinator) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.log.Info().Msg("reload requested")
	for _, w := range c.observer.Reset(viewport.ResetOptions{EmitFirstPage: true}) {
		c.acceptLocked(w)
	}
}

func (c *Coordinator) acceptLocked(w domain.Window) {
	change := c.tracker.ComputeChange(filters.NewState(c.query, w))
	if change.Invalidating || (w.AtOrigin() && c.acc.Len() > 0) {
		c.restartLocked()
	}

	if c.done {
		c.log.Debug().Str("window", w.String()).Int("total", c.acc.Total()).Msg("all items held, window ignored")
		return
	}
	if _, seen := c.requested[w]; seen {
		return
	}
	c.requested[w] = struct{}{}

	if c.state == StateFetching {
		c.pending = append(c.pending, w)
		return
	}
	c.issueLocked(w)
}

// restartLocked begins a new epoch with an empty result
func (c *Coordinator) restartLocked() {
	c.epoch++
	c.acc.Clear()
	c.done = false
	c.pending = nil
	c.requested = make(map[domain.Window]struct{})
	if c.state == StateFetching {
		// the outstanding fetch belongs to the previous epoch now
		c.state = StateSettled
	}

	c.metrics.IncEpochs()
	c.metrics.SetAccumulated(0)
	c.log.Debug().Uint64("epoch", c.epoch).Msg("results invalidated")
	c.pub.Publish(domain.ResultsSettledEvent{Epoch: c.epoch})
}

func (c *Coordinator) issueLocked(w domain.Window) {
	req := fetch.Request{Epoch: c.epoch, Window: w, Query: c.query}
	ticket := uuid.NewString()

	c.state = StateFetching
	c.setBusyLocked(true)
	c.pub.Publish(domain.FetchStartedEvent{Epoch: req.Epoch, Window: w, Page: fetch.PageNumber(w)})
	c.log.Debug().
		Str("ticket", ticket).
		Uint64("epoch", req.Epoch).
		Str("window", w.String()).
		Int("page", fetch.PageNumber(w)).
		Msg("fetch issued")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		page, err := c.fetcher.Fetch(c.ctx, req)
		c.complete(ticket, req, page, err, time.Since(start))
	}()
}

func (c *Coordinator) complete(ticket string, req fetch.Request, page domain.Page, err error, took time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if req.Epoch != c.epoch {
		c.metrics.ObserveFetch(metrics.OutcomeStale, took)
		c.log.Debug().
			Str("ticket", ticket).
			Uint64("epoch", req.Epoch).
			Uint64("current_epoch", c.epoch).
			Str("window", req.Window.String()).
			Msg("stale response discarded")
		c.pub.Publish(domain.StaleResponseDiscardedEvent{Epoch: req.Epoch, CurrentEpoch: c.epoch, Window: req.Window})
		return
	}

	if err != nil {
		c.metrics.ObserveFetch(metrics.OutcomeFailure, took)
		c.log.Error().Err(err).
			Str("ticket", ticket).
			Str("window", req.Window.String()).
			Msg("fetch failed")

		delete(c.requested, req.Window)
		for _, w := range c.pending {
			delete(c.requested, w)
		}
		c.pending = nil
		c.observer.Rewind(req.Window)
		c.pub.Publish(domain.FetchFailedEvent{Epoch: req.Epoch, Window: req.Window, Err: err})
		c.settleLocked()
		return
	}

	c.metrics.ObserveFetch(metrics.OutcomeSuccess, took)
	added := c.acc.Append(page)
	c.metrics.SetAccumulated(c.acc.Len())
	// an empty page means the provider has nothing past this window
	c.done = c.acc.ShouldStop() || len(page.Items) == 0

	c.log.Debug().
		Str("ticket", ticket).
		Str("window", req.Window.String()).
		Int("added", added).
		Int("held", c.acc.Len()).
		Int("total", c.acc.Total()).
		Dur("took", took).
		Msg("page merged")

	c.pub.Publish(domain.ResultsSettledEvent{
		Epoch: req.Epoch,
		Items: c.acc.Items(),
		Total: c.acc.Total(),
		Done:  c.done,
	})

	if c.done {
		c.pending = nil
	}
	if len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.issueLocked(next)
		return
	}
	c.settleLocked()
}

func (c *Coordinator) settleLocked() {
	c.state = StateSettled
	c.setBusyLocked(false)
}

func (c *Coordinator) setBusyLocked(busy bool) {
	if c.busy == busy {
		return
	}
	c.busy = busy
	c.pub.Publish(domain.BusyChangedEvent{Busy: busy})
}

// Attach subscribes the coordinator to viewport, filter and reload events
// on bus. The subscriptions are released by Close.
func (c *Coordinator) Attach(bus eventbus.EventBus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.unsubs = append(c.unsubs,
		bus.Subscribe(eventbus.EventRangeChanged, func(e eventbus.DomainEvent) {
			if ev, ok := e.(domain.RangeChangedEvent); ok {
				c.ObserveRange(ev.Range)
			}
		}),
		bus.Subscribe(eventbus.EventFilterChanged, func(e eventbus.DomainEvent) {
			if ev, ok := e.(domain.FilterChangedEvent); ok {
				c.ApplyFilters(FilterChange{SearchTerm: ev.SearchTerm, Sort: ev.Sort})
			}
		}),
		bus.Subscribe(eventbus.EventReloadRequested, func(e eventbus.DomainEvent) {
			c.Reload()
		}),
	)
}

// Close unsubscribes from all event sources, cancels outstanding fetches
// and waits for them to return. Completions arriving afterwards never
// mutate state, and every other operation becomes a no-op.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.cancel()
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	c.wg.Wait()
	c.log.Debug().Msg("coordinator closed")
}

// Snapshot returns a copy of the coordinator's current state
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Items: c.acc.Items(),
		Total: c.acc.Total(),
		Busy:  c.busy,
		State: c.state,
		Epoch: c.epoch,
		Query: c.query,
		Done:  c.done,
	}
}
