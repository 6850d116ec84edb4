package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Service struct {
	products   ProductRepo
	categories CategoryRepo
}

func NewService(products ProductRepo, categories CategoryRepo) *Service {
	return &Service{
		products:   products,
		categories: categories,
	}
}

// ListParams is the raw listing request before category expansion.
type ListParams struct {
	Search     string
	CategoryID string
	Gender     string
	MinPrice   *int64
	MaxPrice   *int64
	InStock    *bool
	Sort       string
	Page       int
	Limit      int
}

func (s *Service) ListProducts(ctx context.Context, params ListParams) (domain.ProductPage, error) {
	q := domain.ListQuery{
		Search:  strings.TrimSpace(params.Search),
		Sort:    domain.ParseSortKey(params.Sort),
		InStock: params.InStock,
		Page:    params.Page,
		Limit:   params.Limit,
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	if params.MinPrice != nil {
		if *params.MinPrice < 0 {
			return domain.ProductPage{}, apperr.Validation("minPrice must be non-negative")
		}
		q.MinPrice, q.HasMin = *params.MinPrice, true
	}
	if params.MaxPrice != nil {
		if *params.MaxPrice < 0 {
			return domain.ProductPage{}, apperr.Validation("maxPrice must be non-negative")
		}
		q.MaxPrice, q.HasMax = *params.MaxPrice, true
	}

	if cat := strings.TrimSpace(params.CategoryID); cat != "" {
		ids, err := s.DescendantIDs(ctx, cat)
		if err != nil {
			return domain.ProductPage{}, err
		}
		q.CategoryIDs = ids
	} else if g := strings.TrimSpace(params.Gender); g != "" {
		// Gender scopes through categories, and only when no explicit
		// category filter was given.
		gender, ok := domain.ParseGender(g)
		if !ok {
			return domain.ProductPage{}, apperr.Validation("invalid gender")
		}
		cats, err := s.categories.List(ctx, CategoryFilter{Gender: gender})
		if err != nil {
			return domain.ProductPage{}, err
		}
		if len(cats) > 0 {
			ids := make([]string, 0, len(cats))
			for _, c := range cats {
				ids = append(ids, c.ID)
			}
			q.CategoryIDs = ids
		}
	}

	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return domain.ProductPage{}, err
	}

	return domain.ProductPage{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}

// SearchProducts is the free-text listing used by /products/search.
func (s *Service) SearchProducts(ctx context.Context, query string, params ListParams) (domain.ProductPage, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return domain.ProductPage{}, apperr.Validation("search query must be at least 2 characters")
	}
	params.Search = query
	params.Gender = ""
	return s.ListProducts(ctx, params)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperr.Validation("product id is required")
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !p.Visible() {
		return domain.Product{}, apperr.NotFound("product")
	}
	return p, nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Currency    string
	Amount      int64
	Stock       int64
	CategoryID  string
	Photos      []string
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Currency = strings.TrimSpace(in.Currency)

	if in.Name == "" || in.Description == "" || in.CategoryID == "" {
		return domain.Product{}, apperr.Validation("name, description and category are required")
	}
	if in.Currency == "" {
		return domain.Product{}, apperr.Validation("currency is required")
	}
	if in.Amount < 0 {
		return domain.Product{}, apperr.Validation("price must be non-negative")
	}
	if in.Stock < 0 {
		return domain.Product{}, apperr.Validation("stock must be non-negative")
	}
	if err := s.requireVisibleCategory(ctx, in.CategoryID); err != nil {
		return domain.Product{}, err
	}

	return s.products.Create(ctx, domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       domain.Money{Currency: in.Currency, Amount: in.Amount},
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		Photos:      in.Photos,
		IsActive:    true,
	})
}

// UpdateProductInput carries a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Amount      *int64
	Stock       *int64
	CategoryID  *string
	Photos      []string
	IsActive    *bool
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (domain.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if p.IsDeleted {
		return domain.Product{}, apperr.NotFound("product")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Product{}, apperr.Validation("name must not be empty")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return domain.Product{}, apperr.Validation("price must be non-negative")
		}
		p.Price.Amount = *in.Amount
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return domain.Product{}, apperr.Validation("stock must be non-negative")
		}
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		if err := s.requireVisibleCategory(ctx, *in.CategoryID); err != nil {
			return domain.Product{}, err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Photos != nil {
		p.Photos = in.Photos
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	return s.products.Update(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.IsDeleted {
		return apperr.NotFound("product")
	}
	p.IsDeleted = true
	p.IsActive = false
	_, err = s.products.Update(ctx, p)
	return err
}

// ReserveStock and ReleaseStock expose the inventory primitive to the order
// engine; nothing else mutates stock outside admin updates.
func (s *Service) ReserveStock(ctx context.Context, id string, qty int64) error {
	return s.products.Reserve(ctx, id, qty)
}

func (s *Service) ReleaseStock(ctx context.Context, id string, qty int64) error {
	return s.products.Release(ctx, id, qty)
}

func (s *Service) requireVisibleCategory(ctx context.Context, id string) error {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return apperr.Validation("category not found or inactive")
	}
	if !c.Visible() {
		return apperr.Validation("category not found or inactive")
	}
	return nil
}
