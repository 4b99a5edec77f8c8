package domain

import "context"

// OrderRepository is the persistence port for the order aggregate. It lives in
// the domain layer and is implemented by the infrastructure layer.
type OrderRepository interface {
	// Save creates or updates the aggregate including its items.
	Save(ctx context.Context, order *Order) error

	// Delete removes an order that never became visible (publish failed during
	// creation).
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByUser returns one page of the user's orders, newest first.
	FindByUser(ctx context.Context, userID int64, offset, limit int) ([]*Order, error)
}
