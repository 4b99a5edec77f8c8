package saga

import (
	"context"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/order/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PersistOrderHandler builds the PENDING order from the reserved lines and
// saves it. Deleting the record is registered as compensation: if the creation
// event never makes it onto the bus, the order was never created.
type PersistOrderHandler struct {
	NextHandler
}

func (h *PersistOrderHandler) Handle(fc *FulfillmentContext) error {
	ctx, span := fc.Tracer.Start(fc.Ctx, "saga.PersistOrder")
	defer span.End()

	order, err := domain.NewOrder(fc.UserID, fc.ShippingAddressID, fc.Lines)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := fc.Repo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save order")
		return errors.Wrap(err, "failed to save pending order")
	}
	fc.Order = order
	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
	)

	fc.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := fc.Tracer.Start(compCtx, "saga.compensation.DeleteOrder")
		defer compSpan.End()
		if err := fc.Repo.Delete(compCtx, order.ID); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).Int64("order_id", order.ID).
				Msg("failed to delete uncommitted order")
		}
	})

	return h.executeNext(fc)
}
