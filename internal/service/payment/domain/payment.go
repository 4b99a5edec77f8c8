package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
	StatusRefunded   PaymentStatus = "REFUNDED"
)

// DefaultMethod is used when the order event names no payment method.
const DefaultMethod = "CREDIT_CARD"

// Payment is one charge attempt for one order. The unique order id constraint
// in storage makes creation idempotent under duplicate event delivery.
// GatewayResponse keeps the processor's raw answer on both outcomes.
type Payment struct {
	ID              int64
	PaymentID       string
	OrderID         int64
	UserID          int64
	Amount          float64
	Method          string
	Status          PaymentStatus
	TransactionID   string
	GatewayResponse string
	FailureReason   string
	RefundID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPayment records a pending charge for an order.
func NewPayment(orderID, userID int64, amount float64, method string) *Payment {
	if method == "" {
		method = DefaultMethod
	}
	now := time.Now()
	return &Payment{
		PaymentID: GeneratePaymentID(),
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BeginProcessing moves the payment onto the gateway path.
func (p *Payment) BeginProcessing() error {
	if p.Status != StatusPending {
		return &InvalidPaymentStateError{Operation: "process", From: p.Status}
	}
	p.Status = StatusProcessing
	p.UpdatedAt = time.Now()
	return nil
}

// Complete records the gateway's acceptance along with its raw response.
func (p *Payment) Complete(transactionID, gatewayResponse string) error {
	if p.Status != StatusProcessing {
		return &InvalidPaymentStateError{Operation: "complete", From: p.Status}
	}
	p.Status = StatusCompleted
	p.TransactionID = transactionID
	p.GatewayResponse = gatewayResponse
	p.UpdatedAt = time.Now()
	return nil
}

// Fail records a decline or processing error. FAILED is terminal; there is no
// retry of the charge, the order side compensates instead.
func (p *Payment) Fail(reason string) error {
	if p.Status != StatusProcessing && p.Status != StatusPending {
		return &InvalidPaymentStateError{Operation: "fail", From: p.Status}
	}
	p.Status = StatusFailed
	p.GatewayResponse = reason
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	return nil
}

// Refund reverses a completed payment. Only COMPLETED payments are
// refundable.
func (p *Payment) Refund(refundID string) error {
	if p.Status != StatusCompleted {
		return &InvalidPaymentStateError{Operation: "refund", From: p.Status}
	}
	p.Status = StatusRefunded
	p.RefundID = refundID
	p.UpdatedAt = time.Now()
	return nil
}

// GeneratePaymentID returns PAY-<epoch millis>-<8 uppercase uuid chars>.
func GeneratePaymentID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PAY-%d-%s", time.Now().UnixMilli(), suffix)
}
