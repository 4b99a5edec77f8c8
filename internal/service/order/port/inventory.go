package port

import "context"

// InventoryReservation is the outbound port to the inventory service.
type InventoryReservation interface {
	// Reserve atomically takes quantity units of the product. false means
	// insufficient stock (or inventory unreachable, which callers must treat
	// the same way).
	Reserve(ctx context.Context, productID int64, quantity int32) (bool, error)

	// Release is the compensation for Reserve.
	Release(ctx context.Context, productID int64, quantity int32) error
}
