package domain

import (
	"fmt"
	"strings"
)

// Item represents a single server row returned by a data provider
type Item struct {
	Position    int    `json:"position" yaml:"position"`
	Name        string `json:"item" yaml:"item"`
	Location    string `json:"location" yaml:"location"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
}

// Window is a half-open row range [Start, End) over the full ordered result set
type Window struct {
	Start int
	End   int
}

// Size returns the number of rows the window spans
func (w Window) Size() int {
	return w.End - w.Start
}

// Degenerate reports whether the window spans no rows
func (w Window) Degenerate() bool {
	return w.End <= w.Start || w.Start < 0
}

// AtOrigin reports whether the window starts at the first row
func (w Window) AtOrigin() bool {
	return w.Start == 0
}

func (w Window) String() string {
	return fmt.Sprintf("[%d,%d)", w.Start, w.End)
}

// Range is a raw visible-row range reported by a viewport source.
// Unlike Window it carries no alignment guarantees and may be empty.
type Range struct {
	Start int
	End   int
}

// Empty reports whether no rows are visible
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Page is a provider's answer to one fetch
type Page struct {
	Items []Item `json:"items" yaml:"items"`
	Total int    `json:"count" yaml:"count"`
}

// SortDirection is the direction of the active sort
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Toggle returns the opposite direction
func (d SortDirection) Toggle() SortDirection {
	if d == SortDescending {
		return SortAscending
	}
	return SortDescending
}

// Wire returns the upper-cased form sent to backends
func (d SortDirection) Wire() string {
	return strings.ToUpper(string(d))
}

// ParseSortDirection accepts asc/desc in any case; empty means ascending
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// SortSpec is a single-column sort. An empty By means no sort is active.
type SortSpec struct {
	By        string
	Direction SortDirection
}

// Active reports whether a sort column is set
func (s SortSpec) Active() bool {
	return s.By != ""
}

func (s SortSpec) String() string {
	if !s.Active() {
		return "none"
	}
	return s.By + " " + string(s.Direction)
}

// Query is the non-window part of the active filter state
type Query struct {
	SearchTerm string
	Sort       SortSpec
}

// PageRequest is what a data provider receives for one fetch
type PageRequest struct {
	Page        int // 1-based
	PageSize    int
	SearchField string
	SearchTerm  string
	Sort        SortSpec
}

// Columns lists the sortable item fields in display order
var Columns = []string{"name", "location", "status", "position", "description"}
