package adapter

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/apperr"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/order/app"
)

// CartServiceReader adapts the cart service to the checkout engine's port.
type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) Lines(ctx context.Context, ownerID string) ([]app.CartLine, error) {
	cart, err := r.svc.Raw(ctx, ownerID)
	if err != nil {
		// An owner with no cart yet checks out an empty cart, not a 404.
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, nil
		}
		return nil, err
	}

	lines := make([]app.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, app.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

func (r *CartServiceReader) Clear(ctx context.Context, ownerID string) error {
	return r.svc.Clear(ctx, ownerID)
}

var _ app.CartReader = (*CartServiceReader)(nil)
