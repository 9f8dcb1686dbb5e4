package bus

import "time"

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// EventBus is a thread-safe, in-process pub/sub event bus.
//
// - Type-based fan-out: handlers subscribe by Event.Type(), or to Wildcard.
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
//   subscription order.
// - Error aggregation: handler errors are joined and returned from Publish.
// - Optional observability: metrics are produced only when observers are
//   registered.
//
// Handlers should be quick or hand work off to another goroutine; the
// streaming window publishes from its tick loop.
type EventBus interface {
	// Publish delivers the event synchronously to all active subscribers of
	// event.Type() and to wildcard subscribers.
	Publish(event Event) error
	// Subscribe registers a handler for an event type and returns a
	// Subscription handle that can be used to cancel later.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error
	// PublishBatch publishes events sequentially and aggregates errors.
	PublishBatch(events ...Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of accumulated metrics. Metrics are only
	// collected when at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries and errors.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
