package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/google/uuid"
)

type CategoryStore struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[string]domain.Category)}
}

func (s *CategoryStore) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.categories[c.ID] = c
	return c, nil
}

func (s *CategoryStore) Get(ctx context.Context, id string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, apperr.NotFound("category")
	}
	return c, nil
}

func (s *CategoryStore) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return domain.Category{}, apperr.NotFound("category")
	}
	c.UpdatedAt = time.Now()
	s.categories[c.ID] = c
	return c, nil
}

func (s *CategoryStore) List(ctx context.Context, f app.CategoryFilter) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Category
	for _, c := range s.categories {
		if c.IsDeleted {
			continue
		}
		if !f.IncludeInactive && !c.IsActive {
			continue
		}
		if f.Gender != "" && c.Gender != f.Gender {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *CategoryStore) Children(ctx context.Context, parentID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Category
	for _, c := range s.categories {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ app.CategoryRepo = (*CategoryStore)(nil)
