// Package events re-exports the platform event bus for convenience and
// declares the domain events shared between modules. This allows internal
// modules to import events from internal/events while the bus
// implementation lives in platform/events.
package events

import (
	platformevents "wasales_backend/platform/events"
	"wasales_backend/platform/logger"
)

// Event is a type alias to the platform event interface.
type Event = platformevents.Event

// BaseEvent is a type alias to the platform base event.
type BaseEvent = platformevents.BaseEvent

// Bus is a type alias to the platform bus interface.
type Bus = platformevents.Bus

// Handler is a type alias to the platform handler interface.
type Handler = platformevents.Handler

// HandlerFunc is a type alias to the platform handler adapter.
type HandlerFunc = platformevents.HandlerFunc

// InMemoryBus is a type alias to the platform InMemoryBus.
type InMemoryBus = platformevents.InMemoryBus

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// NewInMemoryBus creates a new in-memory event bus.
// This is a convenience re-export from platform/events.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
