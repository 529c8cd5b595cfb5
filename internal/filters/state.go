// Package filters holds the filter-state snapshot and the tracker that
// decides whether a new snapshot invalidates accumulated results.
package filters

import "scrollgrid/internal/domain"

// State is an immutable snapshot of the active search, sort and window
type State struct {
	SearchTerm string
	Sort       domain.SortSpec
	Window     domain.Window
}

// NewState builds a snapshot from a query and a window
func NewState(q domain.Query, w domain.Window) State {
	return State{SearchTerm: q.SearchTerm, Sort: q.Sort, Window: w}
}

// Query returns the non-window part of the snapshot
func (s State) Query() domain.Query {
	return domain.Query{SearchTerm: s.SearchTerm, Sort: s.Sort}
}

// FilterEqual compares search and sort, ignoring the window
func (s State) FilterEqual(other State) bool {
	return s.SearchTerm == other.SearchTerm &&
		s.Sort.By == other.Sort.By &&
		s.Sort.Direction == other.Sort.Direction
}

// Change classifies the difference between two snapshots
type Change struct {
	Invalidating bool
}

// Tracker keeps the previous snapshot as a baseline
type Tracker struct {
	baseline State
}

// NewTracker creates a tracker whose baseline is the zero state
func NewTracker() *Tracker {
	return &Tracker{}
}

// ComputeChange compares next against the baseline and then stores next as
// the new baseline, whatever the outcome
func (t *Tracker) ComputeChange(next State) Change {
	change := Change{Invalidating: !t.baseline.FilterEqual(next)}
	t.baseline = next
	return change
}

// Baseline returns the last stored snapshot
func (t *Tracker) Baseline() State {
	return t.baseline
}
