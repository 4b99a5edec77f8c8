package application

import (
	"context"
	"time"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/order/application/saga"
	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/service/order/port"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_created_total",
		Help: "Orders successfully created.",
	})
	orderCreateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_create_failures_total",
		Help: "Failed order creations by reason.",
	}, []string{"reason"})
	ordersCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_cancelled_total",
		Help: "Cancelled orders by trigger.",
	}, []string{"trigger"})
)

// OrderApplicationService orchestrates the fulfillment saga and reconciles
// payment outcomes onto the order record.
type OrderApplicationService struct {
	repo      domain.OrderRepository
	cart      port.CartStore
	inventory port.InventoryReservation
	publisher port.EventPublisher
	locker    port.OrderLocker
	tracer    trace.Tracer
}

func NewOrderApplicationService(
	repo domain.OrderRepository,
	cart port.CartStore,
	inventory port.InventoryReservation,
	publisher port.EventPublisher,
	locker port.OrderLocker,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		repo:      repo,
		cart:      cart,
		inventory: inventory,
		publisher: publisher,
		locker:    locker,
		tracer:    tracer,
	}
}

// CreateOrder runs the forward path of the saga. On any failure every
// completed sub-operation is compensated before the error reaches the caller:
// either a fully created order with committed stock, or no side effects.
// paymentMethod may be empty; the payment service applies its default.
func (s *OrderApplicationService) CreateOrder(ctx context.Context, userID, shippingAddressID int64, paymentMethod string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	lines, err := s.cart.Items(ctx, userID)
	if err != nil {
		span.RecordError(err)
		orderCreateFailures.WithLabelValues("cart").Inc()
		return nil, err
	}
	if len(lines) == 0 {
		orderCreateFailures.WithLabelValues("empty_cart").Inc()
		return nil, domain.ErrCartEmpty
	}

	fc := &saga.FulfillmentContext{
		Ctx:               ctx,
		Tracer:            s.tracer,
		UserID:            userID,
		ShippingAddressID: shippingAddressID,
		PaymentMethod:     paymentMethod,
		Lines:             lines,
		Inventory:         s.inventory,
		Cart:              s.cart,
		Repo:              s.repo,
		Publisher:         s.publisher,
	}

	chain := s.buildChain()
	if err := chain.Handle(fc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order creation failed")
		logger.Ctx(ctx).Error().Err(err).Int64("user_id", userID).
			Msg("order creation failed, compensating")
		fc.TriggerCompensation(ctx)
		orderCreateFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	ordersCreated.Inc()
	logger.Ctx(ctx).Info().
		Int64("order_id", fc.Order.ID).
		Str("order_number", fc.Order.OrderNumber).
		Float64("total", fc.Order.TotalAmount).
		Msg("order created")
	return fc.Order, nil
}

func (s *OrderApplicationService) buildChain() saga.Handler {
	chain := new(saga.ReserveStockHandler)
	chain.
		SetNext(new(saga.PersistOrderHandler)).
		SetNext(new(saga.ClearCartHandler)).
		SetNext(new(saga.PublishCreatedHandler))
	return chain
}

func failureReason(err error) string {
	switch err.(type) {
	case *domain.OutOfStockError:
		return "out_of_stock"
	default:
		return "other"
	}
}

// GetOrder returns an order after an ownership check.
func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return order, nil
}

func (s *OrderApplicationService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.repo.FindByNumber(ctx, orderNumber)
}

func (s *OrderApplicationService) ListUserOrders(ctx context.Context, userID int64, page, size int) ([]*domain.Order, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.repo.FindByUser(ctx, userID, page*size, size)
}

// CancelOrder is the user-initiated cancellation. It releases every line's
// stock exactly once; the per-order lock keeps it from racing the payment
// reconciler.
func (s *OrderApplicationService) CancelOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	var cancelled *domain.Order
	err := s.locker.WithLock(ctx, orderID, func(ctx context.Context) error {
		order, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return domain.ErrNotOwner
		}

		oldStatus := order.Status
		if err := order.Cancel(); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, order); err != nil {
			return err
		}
		s.releaseOrderStock(ctx, order)
		s.publishStatusChanged(ctx, order, oldStatus)
		cancelled = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ordersCancelled.WithLabelValues("user").Inc()
	logger.Ctx(ctx).Info().Int64("order_id", orderID).Msg("order cancelled by user")
	return cancelled, nil
}

// UpdateOrderStatus applies the post-payment fulfillment transitions.
func (s *OrderApplicationService) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus domain.OrderStatus) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateOrderStatus")
	defer span.End()

	var updated *domain.Order
	err := s.locker.WithLock(ctx, orderID, func(ctx context.Context) error {
		order, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		oldStatus := order.Status
		switch newStatus {
		case domain.StatusShipped:
			err = order.MarkShipped()
		case domain.StatusDelivered:
			err = order.MarkDelivered()
		default:
			err = &domain.InvalidTransitionError{Operation: "set " + string(newStatus), From: order.Status}
		}
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, order); err != nil {
			return err
		}
		s.publishStatusChanged(ctx, order, oldStatus)
		updated = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}

// HandlePaymentCompleted confirms the order. Safe to re-run on duplicate
// delivery: a second application of the same terminal outcome is a no-op.
func (s *OrderApplicationService) HandlePaymentCompleted(ctx context.Context, event *events.PaymentCompleted) error {
	ctx, span := s.tracer.Start(ctx, "app.HandlePaymentCompleted", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", event.OrderID))

	return s.locker.WithLock(ctx, event.OrderID, func(ctx context.Context) error {
		order, err := s.repo.FindByID(ctx, event.OrderID)
		if err != nil {
			return err
		}
		oldStatus := order.Status

		if err := order.ApplyPaymentCompleted(event.PaymentID); err != nil {
			// Payment succeeded against an order a user already cancelled.
			// Leave the order alone; the payment needs a refund, which is an
			// operator decision, not an automatic one.
			logger.Ctx(ctx).Warn().Err(err).
				Int64("order_id", event.OrderID).
				Str("payment_id", event.PaymentID).
				Msg("payment completed for non-pending order")
			return nil
		}
		if order.Status == oldStatus {
			return nil // duplicate delivery
		}
		if err := s.repo.Save(ctx, order); err != nil {
			return err
		}
		s.publishStatusChanged(ctx, order, oldStatus)
		logger.Ctx(ctx).Info().Int64("order_id", order.ID).Msg("order confirmed")
		return nil
	})
}

// HandlePaymentFailed cancels the order and releases its stock. The release
// happens only on the transition into CANCELLED, so redelivered events cannot
// over-credit stock.
func (s *OrderApplicationService) HandlePaymentFailed(ctx context.Context, event *events.PaymentFailed) error {
	ctx, span := s.tracer.Start(ctx, "app.HandlePaymentFailed", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", event.OrderID))

	return s.locker.WithLock(ctx, event.OrderID, func(ctx context.Context) error {
		order, err := s.repo.FindByID(ctx, event.OrderID)
		if err != nil {
			return err
		}
		oldStatus := order.Status

		transitioned, err := order.ApplyPaymentFailed(event.PaymentID)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Int64("order_id", event.OrderID).
				Msg("payment failed for order past cancellation")
			return nil
		}
		if !transitioned {
			return nil // duplicate delivery, already cancelled and released
		}
		if err := s.repo.Save(ctx, order); err != nil {
			return err
		}
		s.releaseOrderStock(ctx, order)
		s.publishStatusChanged(ctx, order, oldStatus)
		ordersCancelled.WithLabelValues("payment_failed").Inc()
		logger.Ctx(ctx).Warn().
			Int64("order_id", order.ID).
			Str("error", event.ErrorMessage).
			Msg("order cancelled after payment failure")
		return nil
	})
}

// releaseOrderStock compensates the order's reservations. Per-line errors are
// logged and swallowed so one failed release does not block the rest.
func (s *OrderApplicationService) releaseOrderStock(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if err := s.inventory.Release(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Int64("order_id", order.ID).
				Int64("product_id", item.ProductID).
				Msg("failed to release stock")
		}
	}
}

// publishStatusChanged is best effort: a lost status event degrades
// notifications, never the saga.
func (s *OrderApplicationService) publishStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.OrderStatus) {
	event := &events.OrderStatusChanged{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		OldStatus:   string(oldStatus),
		NewStatus:   string(order.Status),
		ChangedAt:   time.Now(),
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("order_id", order.ID).
			Msg("failed to publish order status change")
	}
}
