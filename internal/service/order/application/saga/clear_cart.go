package saga

import (
	"context"

	"ecommerce/internal/pkg/logger"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/codes"
)

// ClearCartHandler empties the cart once the order exists. Restoring the
// lines is registered as compensation so a later publish failure leaves the
// user's cart intact.
type ClearCartHandler struct {
	NextHandler
}

func (h *ClearCartHandler) Handle(fc *FulfillmentContext) error {
	ctx, span := fc.Tracer.Start(fc.Ctx, "saga.ClearCart")
	defer span.End()

	if err := fc.Cart.Clear(ctx, fc.UserID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clear cart")
		return errors.Wrap(err, "failed to clear cart")
	}

	lines := fc.Lines
	fc.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := fc.Tracer.Start(compCtx, "saga.compensation.RestoreCart")
		defer compSpan.End()
		if err := fc.Cart.Restore(compCtx, fc.UserID, lines); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).Int64("user_id", fc.UserID).
				Msg("failed to restore cart")
		}
	})

	return h.executeNext(fc)
}
