package app

import (
	"context"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

type Service struct {
	repo    CartRepo
	catalog ProductReader
}

func NewService(repo CartRepo, catalog ProductReader) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
	}
}

// View reads the cart joined against live catalog state. Lines whose product
// is missing, hidden or short on stock are dropped from the view; lines whose
// live price drifted from the captured price are reported with both values.
func (s *Service) View(ctx context.Context, ownerID string) (domain.CartView, error) {
	view := domain.CartView{OwnerID: ownerID}

	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return view, nil
		}
		return domain.CartView{}, err
	}

	for _, item := range cart.Items {
		p, err := s.catalog.Product(ctx, item.ProductID)
		if err != nil || !p.Visible || p.Stock < item.Quantity {
			continue
		}

		live := domain.Money{Currency: p.Currency, Amount: p.Amount}
		view.Items = append(view.Items, domain.LineView{
			ProductID:  p.ID,
			Name:       p.Name,
			Quantity:   item.Quantity,
			PriceAtAdd: item.PriceAtAdd,
			LivePrice:  live,
			LineTotal:  domain.Money{Currency: p.Currency, Amount: p.Amount * item.Quantity},
		})
		if live.Amount != item.PriceAtAdd.Amount {
			view.PriceChanged = append(view.PriceChanged, domain.PriceDrift{
				ProductID:  p.ID,
				Name:       p.Name,
				PriceAtAdd: item.PriceAtAdd,
				LivePrice:  live,
			})
		}

		view.Total.Currency = p.Currency
		view.Total.Amount += p.Amount * item.Quantity
	}

	return view, nil
}

func (s *Service) AddItem(ctx context.Context, ownerID, productID string, qty int64) error {
	if strings.TrimSpace(productID) == "" {
		return apperr.Validation("product id is required")
	}
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}

	p, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Visible {
		return apperr.NotFound("product")
	}
	if p.Stock < qty {
		return apperr.InsufficientStock(p.Name)
	}

	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}

	// One currency per cart; the total has no meaning across currencies.
	if len(cart.Items) > 0 && cart.Items[0].PriceAtAdd.Currency != p.Currency {
		return apperr.Validation("cart items must share one currency")
	}

	if i, ok := cart.Find(productID); ok {
		// The captured price stays at its original value on a quantity bump.
		cart.Items[i].Quantity += qty
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:  productID,
			Quantity:   qty,
			PriceAtAdd: domain.Money{Currency: p.Currency, Amount: p.Amount},
			AddedAt:    time.Now(),
		})
	}

	return s.repo.Save(ctx, cart)
}

func (s *Service) UpdateItem(ctx context.Context, ownerID, productID string, qty int64) error {
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}

	p, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Visible {
		return apperr.NotFound("product")
	}
	if p.Stock < qty {
		return apperr.InsufficientStock(p.Name)
	}

	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return err
	}
	i, ok := cart.Find(productID)
	if !ok {
		return apperr.NotFound("cart item")
	}
	cart.Items[i].Quantity = qty

	return s.repo.Save(ctx, cart)
}

// RemoveItem is a no-op when the line is absent.
func (s *Service) RemoveItem(ctx context.Context, ownerID, productID string) error {
	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}

	i, ok := cart.Find(productID)
	if !ok {
		return nil
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	return s.repo.Save(ctx, cart)
}

func (s *Service) Clear(ctx context.Context, ownerID string) error {
	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}
	cart.Items = nil
	return s.repo.Save(ctx, cart)
}

// Raw returns the stored cart without the catalog join; the checkout engine
// revalidates every line itself.
func (s *Service) Raw(ctx context.Context, ownerID string) (domain.Cart, error) {
	return s.repo.Get(ctx, ownerID)
}
