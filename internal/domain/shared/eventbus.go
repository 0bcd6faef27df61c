package shared

import "context"

// EventHandler consumes domain events delivered by the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types the handler wants.
	// Empty means every event.
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Application services
// that only emit events depend on this rather than the full EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus delivers domain events from aggregates to registered
// handlers. Publish must not block on handler execution.
type EventBus interface {
	EventPublisher
	// Subscribe registers a handler; with no eventTypes the handler
	// receives all events.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
