package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventRangeChanged           EventType = "RangeChanged"
	EventFilterChanged          EventType = "FilterChanged"
	EventReloadRequested        EventType = "ReloadRequested"
	EventFetchStarted           EventType = "FetchStarted"
	EventResultsSettled         EventType = "ResultsSettled"
	EventFetchFailed            EventType = "FetchFailed"
	EventBusyChanged            EventType = "BusyChanged"
	EventStaleResponseDiscarded EventType = "StaleResponseDiscarded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// RangeChangedEvent is emitted by a viewport source when the visible rows change
type RangeChangedEvent struct {
	Range Range
}

func (e RangeChangedEvent) Type() EventType { return EventRangeChanged }

// FilterChangedEvent is emitted when the user changes the search term or sort
type FilterChangedEvent struct {
	SearchTerm string
	Sort       SortSpec
}

func (e FilterChangedEvent) Type() EventType { return EventFilterChanged }

// ReloadRequestedEvent asks the coordinator to rebuild the list from the first page
type ReloadRequestedEvent struct{}

func (e ReloadRequestedEvent) Type() EventType { return EventReloadRequested }

// FetchStartedEvent is emitted when a page fetch is issued
type FetchStartedEvent struct {
	Epoch  uint64
	Window Window
	Page   int
}

func (e FetchStartedEvent) Type() EventType { return EventFetchStarted }

// ResultsSettledEvent carries the full accumulated sequence after a page was merged.
// Items is a copy owned by the receiver.
type ResultsSettledEvent struct {
	Epoch uint64
	Items []Item
	Total int
	Done  bool // no further pages will be requested in this epoch
}

func (e ResultsSettledEvent) Type() EventType { return EventResultsSettled }

// FetchFailedEvent is emitted when the data provider could not answer a fetch
type FetchFailedEvent struct {
	Epoch  uint64
	Window Window
	Err    error
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// BusyChangedEvent is emitted when the busy indicator flips
type BusyChangedEvent struct {
	Busy bool
}

func (e BusyChangedEvent) Type() EventType { return EventBusyChanged }

// StaleResponseDiscardedEvent is a diagnostic emitted when a response from an
// older epoch arrives and is dropped
type StaleResponseDiscardedEvent struct {
	Epoch        uint64
	CurrentEpoch uint64
	Window       Window
}

func (e StaleResponseDiscardedEvent) Type() EventType { return EventStaleResponseDiscarded }
