package domain

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// Product is the inventory aggregate. StockQuantity is the only contended
// field; all mutation goes through the repository's locked read-modify-write.
type Product struct {
	ID            int64
	Name          string
	Price         float64
	StockQuantity int32
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
