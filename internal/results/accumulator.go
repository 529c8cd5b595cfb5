// Package results accumulates fetched pages into one ordered sequence.
package results

import "scrollgrid/internal/domain"

// Accumulator merges pages in arrival order and tracks the provider's total.
// It is not safe for concurrent use; the orchestrator owns it.
type Accumulator struct {
	items []domain.Item
	total int
}

// New creates an empty accumulator
func New() *Accumulator {
	return &Accumulator{}
}

// Append concatenates page items and records page.Total as the known total.
// Items beyond a positive total are dropped, and a shrinking total trims
// the sequence, so Len never exceeds Total once Total is positive.
// Returns the number of items appended.
func (a *Accumulator) Append(page domain.Page) int {
	a.total = page.Total

	incoming := page.Items
	if a.total > 0 {
		if len(a.items) > a.total {
			a.items = a.items[:a.total]
		}
		if room := a.total - len(a.items); len(incoming) > room {
			incoming = incoming[:room]
		}
	}
	a.items = append(a.items, incoming...)
	return len(incoming)
}

// ShouldStop reports whether every item the provider announced is held
func (a *Accumulator) ShouldStop() bool {
	return a.total > 0 && len(a.items) >= a.total
}

// Clear empties the sequence and forgets the total
func (a *Accumulator) Clear() {
	a.items = nil
	a.total = 0
}

// Items returns a copy of the accumulated sequence
func (a *Accumulator) Items() []domain.Item {
	out := make([]domain.Item, len(a.items))
	copy(out, a.items)
	return out
}

// Len returns the number of accumulated items
func (a *Accumulator) Len() int {
	return len(a.items)
}

// Total returns the last total reported by the provider
func (a *Accumulator) Total() int {
	return a.total
}
