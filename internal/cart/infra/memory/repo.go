package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/google/uuid"
)

type CartRepo struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewCartRepo() *CartRepo {
	return &CartRepo{carts: make(map[string]domain.Cart)}
}

func (r *CartRepo) Get(ctx context.Context, ownerID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[ownerID]
	if !ok {
		return domain.Cart{}, apperr.NotFound("cart")
	}
	return clone(cart), nil
}

func (r *CartRepo) GetOrCreate(ctx context.Context, ownerID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart, ok := r.carts[ownerID]; ok {
		return clone(cart), nil
	}

	now := time.Now()
	cart := domain.Cart{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.carts[ownerID] = cart
	return clone(cart), nil
}

func (r *CartRepo) Save(ctx context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart.UpdatedAt = time.Now()
	r.carts[cart.OwnerID] = clone(cart)
	return nil
}

// clone keeps callers from sharing the stored item slice.
func clone(c domain.Cart) domain.Cart {
	out := c
	out.Items = make([]domain.CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

var _ app.CartRepo = (*CartRepo)(nil)
