package port

import (
	"context"

	"ecommerce/internal/events"
)

// EventPublisher is the outbound port to the event bus.
type EventPublisher interface {
	PublishPaymentCompleted(ctx context.Context, event *events.PaymentCompleted) error
	PublishPaymentFailed(ctx context.Context, event *events.PaymentFailed) error
}
