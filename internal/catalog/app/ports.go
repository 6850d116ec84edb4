package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Product, int, error)

	// Reserve atomically decrements stock by qty, failing without effect when
	// fewer than qty units remain. Release is its compensating inverse.
	Reserve(ctx context.Context, id string, qty int64) error
	Release(ctx context.Context, id string, qty int64) error
}

type CategoryFilter struct {
	Gender          domain.Gender
	IncludeInactive bool
}

type CategoryRepo interface {
	Create(ctx context.Context, c domain.Category) (domain.Category, error)
	Get(ctx context.Context, id string) (domain.Category, error)
	Update(ctx context.Context, c domain.Category) (domain.Category, error)
	List(ctx context.Context, f CategoryFilter) ([]domain.Category, error)
	Children(ctx context.Context, parentID string) ([]domain.Category, error)
}
