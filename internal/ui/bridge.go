package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"scrollgrid/internal/eventbus"
)

// Forwarder relays coordinator events from the bus to the program. Handlers
// never block the bus; events are queued and sent from Run.
type Forwarder struct {
	ch     chan tea.Msg
	unsubs []func()
	log    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewForwarder subscribes to the render-sink events on bus
func NewForwarder(bus eventbus.EventBus, logger zerolog.Logger) *Forwarder {
	f := &Forwarder{
		ch:  make(chan tea.Msg, 256),
		log: logger.With().Str("component", "ui").Logger(),
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventResultsSettled,
		eventbus.EventBusyChanged,
		eventbus.EventFetchFailed,
	} {
		f.unsubs = append(f.unsubs, bus.Subscribe(t, f.forward))
	}
	return f
}

// forward may still run after Close when the bus dispatcher picked up the
// handler before it was unsubscribed
func (f *Forwarder) forward(e eventbus.DomainEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- EventMsg{Event: e}:
	default:
		f.log.Warn().Str("event", string(e.Type())).Msg("ui channel full, dropping event")
	}
}

// Run sends queued events until Close is called
func (f *Forwarder) Run(send func(tea.Msg)) {
	for msg := range f.ch {
		send(msg)
	}
}

// Close unsubscribes and stops Run
func (f *Forwarder) Close() {
	for _, unsub := range f.unsubs {
		unsub()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}
