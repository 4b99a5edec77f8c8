package application

import (
	"context"
	"testing"

	"ecommerce/internal/events"
	"ecommerce/internal/service/payment/domain"
	"ecommerce/internal/service/payment/port"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type fakeRepo struct {
	payments    map[string]*domain.Payment
	byOrder     map[int64]string
	failCreate  error
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		payments: make(map[string]*domain.Payment),
		byOrder:  make(map[int64]string),
	}
}

func (f *fakeRepo) Create(_ context.Context, payment *domain.Payment) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	if _, exists := f.byOrder[payment.OrderID]; exists {
		return domain.ErrDuplicatePayment
	}
	copied := *payment
	f.payments[payment.PaymentID] = &copied
	f.byOrder[payment.OrderID] = payment.PaymentID
	return nil
}

func (f *fakeRepo) Update(_ context.Context, payment *domain.Payment) error {
	f.updateCalls++
	copied := *payment
	f.payments[payment.PaymentID] = &copied
	return nil
}

func (f *fakeRepo) FindByPaymentID(_ context.Context, paymentID string) (*domain.Payment, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeRepo) FindByUser(_ context.Context, userID int64, _, _ int) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, payment := range f.payments {
		if payment.UserID == userID {
			copied := *payment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByOrderID(_ context.Context, orderID int64) (*domain.Payment, error) {
	paymentID, ok := f.byOrder[orderID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return f.FindByPaymentID(context.Background(), paymentID)
}

type fakeGateway struct {
	chargeResult port.ChargeResult
	chargeErr    error
	refundResult port.RefundResult
	chargeCalls  int
	refundCalls  int
	lastMethod   string
}

func (f *fakeGateway) Charge(_ context.Context, _ string, _ float64, method string) (port.ChargeResult, error) {
	f.chargeCalls++
	f.lastMethod = method
	return f.chargeResult, f.chargeErr
}

func (f *fakeGateway) Refund(context.Context, string, float64) (port.RefundResult, error) {
	f.refundCalls++
	return f.refundResult, nil
}

type fakePublisher struct {
	completed []*events.PaymentCompleted
	failed    []*events.PaymentFailed
}

func (f *fakePublisher) PublishPaymentCompleted(_ context.Context, event *events.PaymentCompleted) error {
	f.completed = append(f.completed, event)
	return nil
}

func (f *fakePublisher) PublishPaymentFailed(_ context.Context, event *events.PaymentFailed) error {
	f.failed = append(f.failed, event)
	return nil
}

type fixture struct {
	svc       *PaymentService
	repo      *fakeRepo
	gateway   *fakeGateway
	publisher *fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newFakeRepo(),
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
	}
	f.svc = NewPaymentService(f.repo, f.gateway, f.publisher, otel.Tracer("test"))
	f.svc.AttachProcessor(NewProcessor(f.svc, 1))
	return f
}

func orderCreated() *events.OrderCreated {
	return &events.OrderCreated{
		OrderID:     42,
		OrderNumber: "ORD-20260830120000-0001",
		UserID:      100,
		TotalAmount: 119.97,
	}
}

// handleAndDrain runs the consumer handler and then the queued charge
// synchronously, standing in for the worker pool.
func (f *fixture) handleAndDrain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.HandleOrderCreated(context.Background(), orderCreated()))
	f.drainJobs(t)
}

func (f *fixture) drainJobs(t *testing.T) {
	t.Helper()
	for {
		select {
		case job := <-f.svc.processor.jobs:
			require.NoError(t, f.svc.executeCharge(context.Background(), job.paymentID))
		default:
			return
		}
	}
}

func TestHandleOrderCreatedApproved(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{
		Code:          port.CodeApproved,
		TransactionID: "TXN-1",
		Message:       "approved",
	}

	f.handleAndDrain(t)

	payment, err := f.repo.FindByOrderID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, payment.Status)
	assert.Equal(t, "TXN-1", payment.TransactionID)
	assert.Equal(t, "approved", payment.GatewayResponse)
	assert.Equal(t, domain.DefaultMethod, payment.Method)

	require.Len(t, f.publisher.completed, 1)
	assert.Equal(t, payment.PaymentID, f.publisher.completed[0].PaymentID)
	assert.Equal(t, int64(42), f.publisher.completed[0].OrderID)
	assert.InDelta(t, 119.97, f.publisher.completed[0].Amount, 0.001)
	assert.Empty(t, f.publisher.failed)
}

func TestHandleOrderCreatedDeclined(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{Code: port.CodeDeclined, Message: "card declined"}

	f.handleAndDrain(t)

	payment, err := f.repo.FindByOrderID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, payment.Status)
	assert.Equal(t, "card declined", payment.FailureReason)
	assert.Equal(t, "card declined", payment.GatewayResponse)

	require.Len(t, f.publisher.failed, 1)
	assert.Equal(t, payment.PaymentID, f.publisher.failed[0].PaymentID)
	assert.Empty(t, f.publisher.completed)
}

func TestHandleOrderCreatedGatewayError(t *testing.T) {
	f := newFixture()
	f.gateway.chargeErr = errors.New("connection reset")

	f.handleAndDrain(t)

	payment, err := f.repo.FindByOrderID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, payment.Status)
	require.Len(t, f.publisher.failed, 1)
	assert.Contains(t, f.publisher.failed[0].ErrorMessage, "connection reset")
}

func TestHandleOrderCreatedDuplicateDelivery(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{Code: port.CodeApproved, TransactionID: "TXN-1"}

	f.handleAndDrain(t)
	f.handleAndDrain(t)

	// One payment, one charge, one event.
	assert.Equal(t, 1, f.gateway.chargeCalls)
	assert.Len(t, f.publisher.completed, 1)
	assert.Len(t, f.repo.payments, 1)
}

func TestHandleOrderCreatedStorageFailure(t *testing.T) {
	f := newFixture()
	f.repo.failCreate = errors.New("connection refused")

	require.NoError(t, f.svc.HandleOrderCreated(context.Background(), orderCreated()))

	// The failure event carries no payment id: the record never existed.
	require.Len(t, f.publisher.failed, 1)
	assert.Empty(t, f.publisher.failed[0].PaymentID)
	assert.Equal(t, int64(42), f.publisher.failed[0].OrderID)
	assert.Equal(t, 0, f.gateway.chargeCalls)
}

func TestHandleOrderCreatedCarriesMethod(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{Code: port.CodeApproved, TransactionID: "TXN-1"}

	event := orderCreated()
	event.PaymentMethod = "PAYPAL"
	require.NoError(t, f.svc.HandleOrderCreated(context.Background(), event))
	f.drainJobs(t)

	assert.Equal(t, "PAYPAL", f.gateway.lastMethod)
	payment, err := f.repo.FindByOrderID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL", payment.Method)
}

func TestProcessRefund(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{Code: port.CodeApproved, TransactionID: "TXN-1"}
	f.gateway.refundResult = port.RefundResult{Code: port.CodeApproved, RefundID: "REFUND-1"}
	f.handleAndDrain(t)

	payment, _ := f.repo.FindByOrderID(context.Background(), 42)
	refunded, err := f.svc.ProcessRefund(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
	assert.Equal(t, "REFUND-1", refunded.RefundID)
}

func TestProcessRefundRequiresCompletedPayment(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{Code: port.CodeDeclined, Message: "card declined"}
	f.handleAndDrain(t)

	payment, _ := f.repo.FindByOrderID(context.Background(), 42)
	_, err := f.svc.ProcessRefund(context.Background(), payment.PaymentID)
	var invalid *domain.InvalidPaymentStateError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, f.gateway.refundCalls)
}

func TestProcessRefundRejectsPendingPayment(t *testing.T) {
	f := newFixture()

	// Handled but not yet charged: the payment is still PENDING.
	require.NoError(t, f.svc.HandleOrderCreated(context.Background(), orderCreated()))

	payment, err := f.repo.FindByOrderID(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, payment.Status)

	_, err = f.svc.ProcessRefund(context.Background(), payment.PaymentID)
	var invalid *domain.InvalidPaymentStateError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, f.gateway.refundCalls)
}

func TestProcessRefundRejectedByGateway(t *testing.T) {
	f := newFixture()
	f.gateway.chargeResult = port.ChargeResult{Code: port.CodeApproved, TransactionID: "TXN-1"}
	f.gateway.refundResult = port.RefundResult{Code: port.CodeDeclined, Message: "refund window expired"}
	f.handleAndDrain(t)

	payment, _ := f.repo.FindByOrderID(context.Background(), 42)
	_, err := f.svc.ProcessRefund(context.Background(), payment.PaymentID)

	var gatewayErr *domain.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, port.CodeDeclined, gatewayErr.Code)

	// A rejected refund leaves the payment completed.
	after, _ := f.repo.FindByOrderID(context.Background(), 42)
	assert.Equal(t, domain.StatusCompleted, after.Status)
}

func TestProcessRefundUnknownPayment(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ProcessRefund(context.Background(), "PAY-missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
