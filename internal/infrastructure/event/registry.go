package event

import (
	"sync"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// wildcardKey indexes handlers that receive every event type.
const wildcardKey = ""

// HandlerRegistry tracks which handlers want which event types.
// Safe for concurrent use.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry returns an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Register adds a handler for the given event types. With no types
// the handler becomes a wildcard and receives everything.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.handlers[wildcardKey] = append(r.handlers[wildcardKey], handler)
		return
	}
	for _, eventType := range eventTypes {
		r.handlers[eventType] = append(r.handlers[eventType], handler)
	}
}

// Unregister removes a handler from every event type it was
// registered for, wildcard included.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, handlers := range r.handlers {
		kept := handlers[:0:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.handlers, eventType)
		} else {
			r.handlers[eventType] = kept
		}
	}
}

// GetHandlers returns the handlers interested in eventType: the ones
// registered for it plus every wildcard handler.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	wild := r.handlers[wildcardKey]

	result := make([]shared.EventHandler, 0, len(typed)+len(wild))
	result = append(result, typed...)
	result = append(result, wild...)
	return result
}

// GetAllHandlers returns every registered handler exactly once.
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]bool)
	result := make([]shared.EventHandler, 0)
	for _, handlers := range r.handlers {
		for _, h := range handlers {
			if !seen[h] {
				seen[h] = true
				result = append(result, h)
			}
		}
	}
	return result
}
