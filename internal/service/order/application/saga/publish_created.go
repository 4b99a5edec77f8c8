package saga

import (
	"ecommerce/internal/events"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/codes"
)

// PublishCreatedHandler is the commit point of the saga. Until the
// OrderCreated event is durably on the bus the whole creation is revocable;
// after it, payment owns the next move.
type PublishCreatedHandler struct {
	NextHandler
}

func (h *PublishCreatedHandler) Handle(fc *FulfillmentContext) error {
	ctx, span := fc.Tracer.Start(fc.Ctx, "saga.PublishOrderCreated")
	defer span.End()

	order := fc.Order
	event := &events.OrderCreated{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		TotalAmount:       order.TotalAmount,
		ShippingAddressID: order.ShippingAddressID,
		PaymentMethod:     fc.PaymentMethod,
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, events.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	if err := fc.Publisher.PublishOrderCreated(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order created")
		return errors.Wrap(err, "failed to publish order created event")
	}

	span.AddEvent("order created event published")
	return h.executeNext(fc)
}
