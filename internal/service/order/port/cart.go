package port

import (
	"context"

	"ecommerce/internal/service/order/domain"
)

// CartStore is the outbound port to the cart collaborator.
type CartStore interface {
	Items(ctx context.Context, userID int64) ([]domain.CartLine, error)

	// Clear empties the cart after the order is durably created.
	Clear(ctx context.Context, userID int64) error

	// Restore puts lines back, compensating a Clear when a later saga step
	// fails.
	Restore(ctx context.Context, userID int64, lines []domain.CartLine) error
}
