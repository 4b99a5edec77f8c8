package saga

import (
	"context"
	"sync"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/service/order/port"

	"go.opentelemetry.io/otel/trace"
)

// FulfillmentContext carries one createOrder run through the saga chain. All
// external dependencies are abstract ports so every step is testable with
// fakes.
type FulfillmentContext struct {
	Ctx    context.Context
	Tracer trace.Tracer

	UserID            int64
	ShippingAddressID int64
	PaymentMethod     string
	Lines             []domain.CartLine
	Order             *domain.Order

	Inventory port.InventoryReservation
	Cart      port.CartStore
	Repo      domain.OrderRepository
	Publisher port.EventPublisher

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation registers the inverse of a completed sub-operation.
// Compensations run LIFO.
func (c *FulfillmentContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation undoes every completed sub-operation. Individual
// compensation errors are logged and swallowed inside the closures so one
// failure cannot block the rest.
func (c *FulfillmentContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Warn().
		Int("compensations", len(c.compensations)).
		Int64("user_id", c.UserID).
		Msg("rolling back order creation")
	for _, comp := range c.compensations {
		comp(ctx)
	}
}

// Handler is one step of the fulfillment chain.
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(fc *FulfillmentContext) error
}

// NextHandler supplies the chaining boilerplate for concrete steps.
type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(fc *FulfillmentContext) error {
	if h.next != nil {
		return h.next.Handle(fc)
	}
	return nil
}
