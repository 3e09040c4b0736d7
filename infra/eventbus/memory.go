package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/eventbus"
)

// MemoryBus is a synchronous in-memory bus. It keeps every emitted event so
// tests can assert on what a flow published.
type MemoryBus struct {
	mu        sync.RWMutex
	handlers  map[string][]eventbus.HandlerFunc
	published []events.Event
	logger    *slog.Logger
}

// NewWithMemory creates an in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		handlers:  make(map[string][]eventbus.HandlerFunc),
		published: make([]events.Event, 0),
		logger:    logger.With("bus", "memory"),
	}
}

// Register adds a handler for the event type.
func (b *MemoryBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to every registered handler for its type.
// Handler errors are logged and do not stop dispatch.
func (b *MemoryBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[event.Type()]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed", "type", event.Type(), "error", err)
		}
	}
	return nil
}

// Published returns every event emitted so far.
func (b *MemoryBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]events.Event, len(b.published))
	copy(out, b.published)
	return out
}

// ClearPublished resets the captured events.
func (b *MemoryBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = b.published[:0]
}

var _ eventbus.Bus = (*MemoryBus)(nil)
