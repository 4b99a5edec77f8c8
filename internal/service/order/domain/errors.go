package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrNotOwner      = errors.New("order does not belong to user")
)

// OutOfStockError names the first product whose reservation failed. The order
// was not created and no stock was kept.
type OutOfStockError struct {
	ProductID   int64
	ProductName string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product out of stock: %s", e.ProductName)
}

// InvalidTransitionError rejects a lifecycle operation from the wrong state.
type InvalidTransitionError struct {
	Operation string
	From      OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %s", e.Operation, e.From)
}
