package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

type CartRepo interface {
	// Get returns the owner's cart or apperr.KindNotFound when none exists.
	Get(ctx context.Context, ownerID string) (domain.Cart, error)
	GetOrCreate(ctx context.Context, ownerID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

// Product is the slice of catalog state the cart needs; the catalog service
// is wired in through an adapter.
type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64
	Stock    int64
	Visible  bool
}

type ProductReader interface {
	Product(ctx context.Context, id string) (Product, error)
}
