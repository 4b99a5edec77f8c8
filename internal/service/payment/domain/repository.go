package domain

import "context"

// PaymentRepository persists charge attempts. Create must enforce one payment
// per order and return ErrDuplicatePayment on a second insert.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	FindByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID int64) (*Payment, error)
	FindByUser(ctx context.Context, userID int64, offset, limit int) ([]*Payment, error)
}
