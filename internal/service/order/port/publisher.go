package port

import (
	"context"

	"ecommerce/internal/events"
)

// EventPublisher is the outbound port to the event bus.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *events.OrderCreated) error
	PublishOrderStatusChanged(ctx context.Context, event *events.OrderStatusChanged) error
}
