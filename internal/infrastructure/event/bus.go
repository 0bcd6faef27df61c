package event

import (
	"context"
	"sync/atomic"

	"github.com/rentdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events to registered handlers in
// the publishing goroutine. Handler failures are logged and never
// propagate to the publisher: invoice and payment writes must not
// roll back because a listener misbehaved.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	log      *zap.Logger
	running  atomic.Bool
}

// NewInMemoryEventBus returns a stopped bus; call Start before
// publishing.
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		log:      log,
	}
}

// Publish fans each event out to its handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, handler := range b.registry.GetHandlers(ev.EventType()) {
			if err := b.dispatch(ctx, handler, ev); err != nil {
				b.log.Error("handler failed to process event",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit eventTypes the
// handler's own EventTypes() declaration is used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.log.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from all event types.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.log.Debug("handler unsubscribed")
}

// Start marks the bus running.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.log.Info("event bus started")
	return nil
}

// Stop marks the bus stopped.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.log.Info("event bus stopped")
	return nil
}

// dispatch shields the bus from panicking handlers.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, ev)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
