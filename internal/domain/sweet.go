package domain

import (
	"fmt"
	"time"
)

// Domain entity: бизнес-объект (истина).
// Не зависит от Gin, Postgres, Redis.
type Sweet struct {
	ID       int64
	Name     string
	Category string
	Price    float64
	Quantity int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SweetPatch is a partial update: nil fields are left untouched.
type SweetPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
}

// SweetFilter narrows a catalog search. Zero-value fields are ignored;
// all set fields are combined with AND.
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// InsufficientStockError is returned when a purchase asks for more units
// than are on hand. Available is the quantity read under the same row lock
// as the attempted decrement, so it is never stale.
type InsufficientStockError struct {
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Only %d available.", e.Available)
}
