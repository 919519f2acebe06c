package events

import (
	"context"
	"sync"
)

// EventHandler handles a published activity event.
type EventHandler func(context.Context, ActivityEvent) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event ActivityEvent) error
	Subscribe(eventType EventType, handler EventHandler)
	SubscribeAll(handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher. Diffing runs
// to completion once triggered, so handlers execute inline on the
// polling cycle's goroutine.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	catchAll  []EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event.
// Catch-all handlers run after type-specific ones.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event ActivityEvent) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	handlers = append(handlers, d.catchAll...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// continue processing other handlers despite errors
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// SubscribeAll registers a handler invoked for every event type.
func (d *inMemoryDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catchAll = append(d.catchAll, handler)
}
