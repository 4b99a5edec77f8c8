package events

import "fmt"

// Logical event names. One Kafka topic per routing key; the broker-side
// exchange/queue/binding trio collapses to topic + consumer group here.
const (
	OrderCreatedKey       = "order.created"
	OrderStatusChangedKey = "order.status.changed"
	PaymentCompletedKey   = "payment.completed"
	PaymentFailedKey      = "payment.failed"
)

// Consumer groups, one per logical queue.
const (
	PaymentServiceGroup      = "payment-service"
	OrderServiceGroup        = "order-service"
	NotificationServiceGroup = "notification-service"
)

// Route describes where one event kind flows: its topic plus the retry and
// dead-letter topics backing the redelivery policy.
type Route struct {
	Topic      string
	RetryTopic string
	DLTTopic   string
}

// Topology is the broker layout, built once at process start and injected
// into producers and consumers instead of scattering topic literals.
type Topology struct {
	routes map[string]Route
}

// NewTopology declares routes for every saga event. All queues share the same
// dead-letter policy.
func NewTopology() *Topology {
	t := &Topology{routes: make(map[string]Route)}
	for _, key := range []string{OrderCreatedKey, OrderStatusChangedKey, PaymentCompletedKey, PaymentFailedKey} {
		t.routes[key] = Route{
			Topic:      key,
			RetryTopic: key + ".retry",
			DLTTopic:   key + ".dlt",
		}
	}
	return t
}

// Route panics on an unknown event name: a missing route is a wiring bug, not
// a runtime condition.
func (t *Topology) Route(eventName string) Route {
	r, ok := t.routes[eventName]
	if !ok {
		panic(fmt.Sprintf("no route declared for event %q", eventName))
	}
	return r
}
