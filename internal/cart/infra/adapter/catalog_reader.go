package adapter

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
)

// CatalogServiceReader adapts the catalog service to the cart's product port.
// A hidden or missing product is reported as not visible rather than an
// error, so the cart view can drop the line instead of failing.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) Product(ctx context.Context, id string) (app.Product, error) {
	p, err := r.svc.GetProduct(ctx, id)
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

var _ app.ProductReader = (*CatalogServiceReader)(nil)
