package ui

import (
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollgrid/internal/domain"
	"scrollgrid/internal/eventbus"
	"scrollgrid/internal/provider"
)

type recorder struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (r *recorder) Publish(e eventbus.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ranges() []domain.Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Range
	for _, e := range r.events {
		if rc, ok := e.(domain.RangeChangedEvent); ok {
			out = append(out, rc.Range)
		}
	}
	return out
}

func (r *recorder) filters() []domain.FilterChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FilterChangedEvent
	for _, e := range r.events {
		if fc, ok := e.(domain.FilterChangedEvent); ok {
			out = append(out, fc)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := NewModel(rec, Options{})
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 15})
	return m, rec
}

func settle(m *Model, items []domain.Item, total int, done bool) {
	m.Update(EventMsg{Event: domain.ResultsSettledEvent{Epoch: 1, Items: items, Total: total, Done: done}})
}

func TestInitPublishesVisibleRange(t *testing.T) {
	rec := &recorder{}
	m := NewModel(rec, Options{})
	m.Init()
	assert.Equal(t, []domain.Range{{Start: 0, End: defaultListHeight}}, rec.ranges())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 15})
	assert.Equal(t, domain.Range{Start: 0, End: 15 - chromeLines}, rec.ranges()[1])
}

func TestScrollingPublishesRanges(t *testing.T) {
	m, rec := newTestModel(t)
	h := m.listHeight()
	settle(m, provider.GenerateItems(20, 1), 100, false)
	rec.reset()

	for i := 0; i < h-1; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Empty(t, rec.ranges(), "moving inside the viewport does not scroll")

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, []domain.Range{{Start: 1, End: h + 1}}, rec.ranges())
	assert.Equal(t, h, m.cursor)

	m.Update(runes("G"))
	last := rec.ranges()[len(rec.ranges())-1]
	assert.Equal(t, domain.Range{Start: 100 - h, End: 100}, last)
	assert.Equal(t, 99, m.cursor)
}

func TestSettleRepublishesRange(t *testing.T) {
	m, rec := newTestModel(t)
	rec.reset()

	settle(m, provider.GenerateItems(10, 1), 10, true)
	assert.Equal(t, []domain.Range{{Start: 0, End: 10}}, rec.ranges())

	settle(m, provider.GenerateItems(10, 1), 10, true)
	assert.Len(t, rec.ranges(), 2)
}

func TestSearchPublishesFilterChange(t *testing.T) {
	m, rec := newTestModel(t)
	settle(m, provider.GenerateItems(20, 1), 100, false)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	m.Update(runes("/"))
	require.True(t, m.searching)
	m.Update(runes("ab"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.searching)
	require.Len(t, rec.filters(), 1)
	assert.Equal(t, "ab", rec.filters()[0].SearchTerm)
	assert.Equal(t, 0, m.cursor)
	assert.Empty(t, m.items)
	assert.Equal(t, "ab", m.query.SearchTerm)

	// submitting the same term again is a no-op
	m.Update(runes("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, rec.filters(), 1)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, rec.filters(), 2)
	assert.Empty(t, rec.filters()[1].SearchTerm)
}

func TestSearchEscapeCancels(t *testing.T) {
	m, rec := newTestModel(t)
	m.Update(runes("/"))
	m.Update(runes("zz"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.searching)
	assert.Empty(t, rec.filters())
	assert.Empty(t, m.query.SearchTerm)
}

func TestSortKeys(t *testing.T) {
	m, rec := newTestModel(t)

	m.Update(runes("s"))
	m.Update(runes("s"))
	m.Update(runes("S"))

	got := rec.filters()
	require.Len(t, got, 3)
	assert.Equal(t, domain.SortSpec{By: "name", Direction: domain.SortAscending}, got[0].Sort)
	assert.Equal(t, domain.SortSpec{By: "location", Direction: domain.SortAscending}, got[1].Sort)
	assert.Equal(t, domain.SortSpec{By: "location", Direction: domain.SortDescending}, got[2].Sort)
}

func TestNextSortColumnWraps(t *testing.T) {
	last := domain.Columns[len(domain.Columns)-1]
	next := nextSortColumn(domain.SortSpec{By: last, Direction: domain.SortDescending})
	assert.Equal(t, domain.SortSpec{By: domain.Columns[0], Direction: domain.SortAscending}, next)
}

func TestReloadKey(t *testing.T) {
	m, rec := newTestModel(t)
	settle(m, provider.GenerateItems(20, 1), 20, true)
	m.Update(runes("G"))
	rec.reset()

	m.Update(runes("r"))
	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.EventReloadRequested, rec.events[0].Type())
	assert.Equal(t, 0, m.cursor)
}

func TestBusyStartsSpinner(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(EventMsg{Event: domain.BusyChangedEvent{Busy: true}})
	assert.NotNil(t, cmd)
	assert.True(t, m.busy)

	_, cmd = m.Update(EventMsg{Event: domain.BusyChangedEvent{Busy: false}})
	assert.Nil(t, cmd)
}

func TestViewRendersRowsAndStatus(t *testing.T) {
	m, _ := newTestModel(t)
	items := provider.GenerateItems(3, 1)
	settle(m, items, 5, false)

	view := m.View()
	assert.Contains(t, view, items[0].Name)
	assert.Contains(t, view, "3 of 5 loaded")
	assert.Contains(t, view, "loading…")

	m.Update(EventMsg{Event: domain.FetchFailedEvent{Epoch: 1, Err: errors.New("backend down")}})
	assert.Contains(t, m.View(), "fetch failed: backend down")

	// results clear the banner
	settle(m, items, 3, true)
	assert.NotContains(t, m.View(), "fetch failed")
}

func TestViewNoResults(t *testing.T) {
	m, _ := newTestModel(t)
	settle(m, nil, 0, true)
	assert.Contains(t, m.View(), "no results")
}

func TestDetailsWithoutProgramReportsError(t *testing.T) {
	m, _ := newTestModel(t)
	settle(m, provider.GenerateItems(3, 1), 3, true)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.ErrorContains(t, m.err, "program not set")
}

func TestForwarderRelaysEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	f := NewForwarder(bus, zerolog.Nop())
	got := make(chan tea.Msg, 4)
	go f.Run(func(msg tea.Msg) { got <- msg })
	defer f.Close()

	bus.Publish(domain.RangeChangedEvent{Range: domain.Range{Start: 0, End: 1}})
	bus.Publish(domain.BusyChangedEvent{Busy: true})

	select {
	case msg := <-got:
		ev, ok := msg.(EventMsg)
		require.True(t, ok)
		assert.Equal(t, domain.BusyChangedEvent{Busy: true}, ev.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("event not forwarded")
	}
}

func TestForwarderIgnoresEventsAfterClose(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	f := NewForwarder(bus, zerolog.Nop())
	f.Close()
	f.Close()

	assert.NotPanics(t, func() {
		f.forward(domain.BusyChangedEvent{Busy: true})
	})
	_, open := <-f.ch
	assert.False(t, open)
}
