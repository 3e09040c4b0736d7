// Package eventbus defines the contract for publishing domain events.
// Implementations live under infra/eventbus (memory, redis streams, kafka).
package eventbus

import (
	"context"

	"github.com/venuehq/payouts/pkg/domain/events"
)

// HandlerFunc processes one event. A handler error is logged by the bus and
// never propagated to the emitter.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes domain events to registered handlers.
type Bus interface {
	// Emit publishes the event to all handlers registered for its type.
	// Emission is fire-and-forget from the caller's perspective.
	Emit(ctx context.Context, event events.Event) error

	// Register subscribes a handler to an event type.
	Register(eventType string, handler HandlerFunc)
}
