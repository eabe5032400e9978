// Package messaging provides the local in-process event bus used for
// development and tests; production wiring uses the EventBridge publisher.
package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"sitecanvas-backend/domain/events"
)

// EventHandler consumes one domain event.
type EventHandler func(ctx context.Context, event events.DomainEvent) error

// LocalDispatcher fans events out to in-process handlers, synchronously in
// registration order. Handler errors are logged, not propagated: one broken
// subscriber must not fail the publishing operation.
type LocalDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	all      []EventHandler
	logger   *zap.Logger

	published []events.DomainEvent
}

// NewLocalDispatcher creates an empty dispatcher.
func NewLocalDispatcher(logger *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type.
func (d *LocalDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (d *LocalDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = append(d.all, handler)
}

// Publish dispatches a single event.
func (d *LocalDispatcher) Publish(ctx context.Context, event events.DomainEvent) error {
	return d.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch dispatches events in order.
func (d *LocalDispatcher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	d.mu.Lock()
	d.published = append(d.published, batch...)
	d.mu.Unlock()

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, event := range batch {
		for _, handler := range d.handlers[event.GetEventType()] {
			d.dispatch(ctx, handler, event)
		}
		for _, handler := range d.all {
			d.dispatch(ctx, handler, event)
		}
	}
	return nil
}

func (d *LocalDispatcher) dispatch(ctx context.Context, handler EventHandler, event events.DomainEvent) {
	if err := handler(ctx, event); err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Error(err))
	}
}

// Published returns every event seen so far (for tests).
func (d *LocalDispatcher) Published() []events.DomainEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]events.DomainEvent(nil), d.published...)
}
