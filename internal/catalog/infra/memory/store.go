// Package memory holds the in-process catalog store used by tests and by
// deployments that run without Postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/google/uuid"
)

// ProductStore implements app.ProductRepo behind one mutex, so stock
// reservation is atomic per process.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]domain.Product)}
}

func (s *ProductStore) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ID] = p
	return p, nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, apperr.NotFound("product")
	}
	return p, nil
}

func (s *ProductStore) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return domain.Product{}, apperr.NotFound("product")
	}
	p.UpdatedAt = time.Now()
	s.products[p.ID] = p
	return p, nil
}

func (s *ProductStore) List(ctx context.Context, q domain.ListQuery) ([]domain.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Product
	for _, p := range s.products {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, q.Sort)

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *ProductStore) Reserve(ctx context.Context, id string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return apperr.NotFound("product")
	}
	if p.Stock < qty {
		return apperr.InsufficientStock(p.Name)
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return nil
}

func (s *ProductStore) Release(ctx context.Context, id string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return apperr.NotFound("product")
	}
	p.Stock += qty
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return nil
}

func matches(p domain.Product, q domain.ListQuery) bool {
	if !p.Visible() {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if len(q.CategoryIDs) > 0 {
		found := false
		for _, id := range q.CategoryIDs {
			if p.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.HasMin && p.Price.Amount < q.MinPrice {
		return false
	}
	if q.HasMax && p.Price.Amount > q.MaxPrice {
		return false
	}
	if q.InStock != nil {
		if *q.InStock && p.Stock <= 0 {
			return false
		}
		if !*q.InStock && p.Stock != 0 {
			return false
		}
	}
	return true
}

func sortProducts(products []domain.Product, key domain.SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch key {
		case domain.SortPriceAsc:
			return a.Price.Amount < b.Price.Amount
		case domain.SortPriceDesc:
			return a.Price.Amount > b.Price.Amount
		case domain.SortNewest:
			return a.CreatedAt.After(b.CreatedAt)
		case domain.SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}

var _ app.ProductRepo = (*ProductStore)(nil)
