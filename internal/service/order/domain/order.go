package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// CartLine is one line of the caller's cart as supplied by the cart
// collaborator. Product name and unit price were captured when the line was
// added.
type CartLine struct {
	ProductID   int64
	ProductName string
	Quantity    int32
	UnitPrice   float64
}

// OrderItem is a line of a persisted order. Items have no lifecycle of their
// own; they live and die with their order.
type OrderItem struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int32
	UnitPrice   float64
	Subtotal    float64
}

// Order is the aggregate root of the fulfillment saga.
type Order struct {
	ID                int64
	OrderNumber       string
	UserID            int64
	Items             []OrderItem
	TotalAmount       float64
	ShippingAddressID int64
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	PaymentID         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder builds a PENDING order from cart lines. Subtotals and the total are
// computed here; they are never trusted from the outside.
func NewOrder(userID, shippingAddressID int64, lines []CartLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	now := time.Now()
	o := &Order{
		OrderNumber:       GenerateOrderNumber(),
		UserID:            userID,
		ShippingAddressID: shippingAddressID,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, line := range lines {
		o.Items = append(o.Items, OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.UnitPrice * float64(line.Quantity),
		})
	}
	o.TotalAmount = o.ComputeTotal()
	return o, nil
}

// ComputeTotal recomputes the order total from its lines. Readers use this
// instead of trusting the stored TotalAmount.
func (o *Order) ComputeTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ApplyPaymentCompleted confirms the order. Re-applying the same outcome is a
// no-op so duplicate event delivery is harmless.
func (o *Order) ApplyPaymentCompleted(paymentID string) error {
	if o.Status == StatusConfirmed && o.PaymentStatus == PaymentCompleted {
		return nil
	}
	if o.Status != StatusPending {
		return &InvalidTransitionError{Operation: "confirm", From: o.Status}
	}
	o.Status = StatusConfirmed
	o.PaymentStatus = PaymentCompleted
	o.PaymentID = paymentID
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyPaymentFailed cancels the order. The caller is responsible for the
// stock compensation; returns true when the transition happened now (i.e. the
// caller should release stock exactly this once).
func (o *Order) ApplyPaymentFailed(paymentID string) (bool, error) {
	if o.Status == StatusCancelled {
		return false, nil
	}
	if o.Status != StatusPending {
		return false, &InvalidTransitionError{Operation: "cancel", From: o.Status}
	}
	o.Status = StatusCancelled
	o.PaymentStatus = PaymentFailed
	o.PaymentID = paymentID
	o.UpdatedAt = time.Now()
	return true, nil
}

// Cancel is the user-initiated cancellation, allowed from PENDING and
// CONFIRMED only.
func (o *Order) Cancel() error {
	switch o.Status {
	case StatusPending, StatusConfirmed:
		o.Status = StatusCancelled
		o.UpdatedAt = time.Now()
		return nil
	default:
		return &InvalidTransitionError{Operation: "cancel", From: o.Status}
	}
}

// MarkShipped moves a confirmed order into fulfillment.
func (o *Order) MarkShipped() error {
	if o.Status != StatusConfirmed {
		return &InvalidTransitionError{Operation: "ship", From: o.Status}
	}
	o.Status = StatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered is the terminal happy-path transition.
func (o *Order) MarkDelivered() error {
	if o.Status != StatusShipped {
		return &InvalidTransitionError{Operation: "deliver", From: o.Status}
	}
	o.Status = StatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}

// GenerateOrderNumber returns ORD-<yyyyMMddHHmmss>-<4 random digits>.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
}
