package domain

import "context"

// ProductRepository is the persistence port for the inventory aggregate.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)

	// Reserve atomically decrements stock when enough is available and reports
	// whether the decrement happened. Insufficient stock is a normal outcome,
	// not an error.
	Reserve(ctx context.Context, productID int64, quantity int32) (bool, error)

	// Release increments stock back. It is the compensation for Reserve and
	// must succeed even when the reservation it undoes is uncertain.
	Release(ctx context.Context, productID int64, quantity int32) error
}
