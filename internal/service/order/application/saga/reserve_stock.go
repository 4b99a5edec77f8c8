package saga

import (
	"context"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/order/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReserveStockHandler reserves inventory line by line, in cart order. Each
// successful reservation registers its release as a compensation before the
// next line is attempted, so a failure at line k rolls back lines 1..k-1.
type ReserveStockHandler struct {
	NextHandler
}

func (h *ReserveStockHandler) Handle(fc *FulfillmentContext) error {
	ctx, span := fc.Tracer.Start(fc.Ctx, "saga.ReserveStock")
	defer span.End()
	span.SetAttributes(attribute.Int("lines", len(fc.Lines)))

	for _, line := range fc.Lines {
		reserved, err := fc.Inventory.Reserve(ctx, line.ProductID, line.Quantity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "inventory reservation failed")
			return err
		}
		if !reserved {
			span.AddEvent("insufficient stock", trace.WithAttributes(
				attribute.Int64("product.id", line.ProductID)))
			return &domain.OutOfStockError{ProductID: line.ProductID, ProductName: line.ProductName}
		}

		productID, quantity := line.ProductID, line.Quantity
		fc.AddCompensation(func(compCtx context.Context) {
			compCtx, compSpan := fc.Tracer.Start(compCtx, "saga.compensation.ReleaseStock")
			defer compSpan.End()
			if err := fc.Inventory.Release(compCtx, productID, quantity); err != nil {
				// A failed release needs operator attention but must not stop
				// the remaining compensations.
				compSpan.RecordError(err)
				logger.Ctx(compCtx).Error().Err(err).
					Int64("product_id", productID).
					Int32("quantity", quantity).
					Msg("failed to release reserved stock")
			}
		})
	}

	span.AddEvent("all lines reserved")
	return h.executeNext(fc)
}
