package adapter

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/apperr"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/order/app"
)

// CatalogInventory adapts the catalog service to the checkout engine's
// inventory port. Reserve and Release delegate to the catalog's atomic stock
// primitive. A missing or hidden product reads as not visible rather than an
// error; the checkout pre-check decides what that means.
type CatalogInventory struct {
	svc *catalogapp.Service
}

func NewCatalogInventory(svc *catalogapp.Service) *CatalogInventory {
	return &CatalogInventory{svc: svc}
}

func (a *CatalogInventory) Product(ctx context.Context, id string) (app.Product, error) {
	p, err := a.svc.GetProduct(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return app.Product{ID: id, Visible: false}, nil
		}
		return app.Product{}, err
	}
	return app.Product{
		ID:       p.ID,
		Name:     p.Name,
		Currency: p.Price.Currency,
		Amount:   p.Price.Amount,
		Stock:    p.Stock,
		Visible:  p.Visible(),
	}, nil
}

func (a *CatalogInventory) Reserve(ctx context.Context, id string, qty int64) error {
	return a.svc.ReserveStock(ctx, id, qty)
}

func (a *CatalogInventory) Release(ctx context.Context, id string, qty int64) error {
	return a.svc.ReleaseStock(ctx, id, qty)
}

var _ app.Inventory = (*CatalogInventory)(nil)
