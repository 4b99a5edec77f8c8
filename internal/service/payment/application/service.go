package application

import (
	"context"
	"fmt"
	"time"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/payment/domain"
	"ecommerce/internal/service/payment/port"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentService owns the payment lifecycle: creation on order events, the
// asynchronous charge, and refunds.
type PaymentService struct {
	repo      domain.PaymentRepository
	gateway   port.PaymentGateway
	publisher port.EventPublisher
	tracer    trace.Tracer
	processor *Processor
}

func NewPaymentService(repo domain.PaymentRepository, gateway port.PaymentGateway, publisher port.EventPublisher, tracer trace.Tracer) *PaymentService {
	return &PaymentService{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		tracer:    tracer,
	}
}

// AttachProcessor wires the worker pool. Done after construction because the
// processor needs the service and the service needs the processor.
func (s *PaymentService) AttachProcessor(p *Processor) {
	s.processor = p
}

// HandleOrderCreated records a pending payment and hands it to the charge
// pool. Redelivered events hit the unique order id constraint and become
// no-ops. A storage failure before the record exists publishes a payment
// failure with an empty payment id so the order still gets cancelled.
func (s *PaymentService) HandleOrderCreated(ctx context.Context, event *events.OrderCreated) error {
	ctx, span := s.tracer.Start(ctx, "app.HandleOrderCreated", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", event.OrderID))

	payment := domain.NewPayment(event.OrderID, event.UserID, event.TotalAmount, event.PaymentMethod)
	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			logger.Ctx(ctx).Info().
				Int64("order_id", event.OrderID).
				Msg("payment already recorded, ignoring redelivered event")
			return nil
		}
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Int64("order_id", event.OrderID).
			Msg("failed to record payment")
		return s.publisher.PublishPaymentFailed(ctx, &events.PaymentFailed{
			OrderID:      event.OrderID,
			ErrorMessage: fmt.Sprintf("failed to record payment: %v", err),
			FailedAt:     time.Now(),
		})
	}

	logger.Ctx(ctx).Info().
		Str("payment_id", payment.PaymentID).
		Int64("order_id", event.OrderID).
		Float64("amount", payment.Amount).
		Msg("payment recorded, queueing charge")
	s.processor.Submit(ctx, payment.PaymentID)
	return nil
}

// ProcessRefund reverses a completed payment via the gateway.
func (s *PaymentService) ProcessRefund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "app.ProcessRefund")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	payment, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.StatusCompleted {
		return nil, &domain.InvalidPaymentStateError{Operation: "refund", From: payment.Status}
	}

	result, err := s.gateway.Refund(ctx, payment.TransactionID, payment.Amount)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.GatewayError{Message: "refund call failed: " + err.Error()}
	}
	if !result.Approved() {
		return nil, &domain.GatewayError{Code: result.Code, Message: result.Message}
	}

	refundID := result.RefundID
	if refundID == "" {
		refundID = "REFUND-" + uuid.NewString()
	}
	if err := payment.Refund(refundID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().
		Str("payment_id", payment.PaymentID).
		Str("refund_id", refundID).
		Msg("payment refunded")
	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.repo.FindByPaymentID(ctx, paymentID)
}

func (s *PaymentService) GetPaymentByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *PaymentService) ListUserPayments(ctx context.Context, userID int64, page, size int) ([]*domain.Payment, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.repo.FindByUser(ctx, userID, page*size, size)
}
