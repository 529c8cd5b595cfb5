package ui

import (
	"scrollgrid/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// pagerMsg contains the result of showing an item in the pager
type pagerMsg struct {
	err error
}
