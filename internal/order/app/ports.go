package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

type OrderRepo interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	Update(ctx context.Context, o domain.Order) (domain.Order, error)
}

type CartLine struct {
	ProductID string
	Quantity  int64
}

type CartReader interface {
	Lines(ctx context.Context, ownerID string) ([]CartLine, error)
	Clear(ctx context.Context, ownerID string) error
}

type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64
	Stock    int64
	Visible  bool
}

// Inventory is the only write path into product stock outside admin edits.
// Reserve must be atomic per product; Release compensates a reservation.
type Inventory interface {
	Product(ctx context.Context, id string) (Product, error)
	Reserve(ctx context.Context, id string, qty int64) error
	Release(ctx context.Context, id string, qty int64) error
}
