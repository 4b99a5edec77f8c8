package port

import "context"

// OrderLocker serializes the mutators of one order across processes. The
// payment reconciler and user-initiated cancel both run under it, so terminal
// transitions and their stock compensation happen once.
type OrderLocker interface {
	WithLock(ctx context.Context, orderID int64, fn func(ctx context.Context) error) error
}
