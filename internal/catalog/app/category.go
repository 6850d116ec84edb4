package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

func (s *Service) ListCategories(ctx context.Context, gender string, includeInactive bool) ([]domain.Category, error) {
	f := CategoryFilter{IncludeInactive: includeInactive}
	if g := strings.TrimSpace(gender); g != "" {
		parsed, ok := domain.ParseGender(g)
		if !ok {
			return nil, apperr.Validation("invalid gender")
		}
		f.Gender = parsed
	}
	return s.categories.List(ctx, f)
}

func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Category{}, apperr.Validation("category id is required")
	}
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if !c.Visible() {
		return domain.Category{}, apperr.NotFound("category")
	}
	return c, nil
}

type CreateCategoryInput struct {
	Name        string
	Description string
	Gender      string
	ParentID    string
}

func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) (domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Category{}, apperr.Validation("name is required")
	}
	gender, ok := domain.ParseGender(in.Gender)
	if !ok {
		return domain.Category{}, apperr.Validation("gender must be one of: men, women")
	}
	if in.ParentID != "" {
		if _, err := s.categories.Get(ctx, in.ParentID); err != nil {
			return domain.Category{}, apperr.Validation("parent category not found")
		}
	}

	return s.categories.Create(ctx, domain.Category{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Gender:      gender,
		ParentID:    in.ParentID,
		IsActive:    true,
	})
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Gender      *string
	ParentID    *string
	IsActive    *bool
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in UpdateCategoryInput) (domain.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if c.IsDeleted {
		return domain.Category{}, apperr.NotFound("category")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Category{}, apperr.Validation("name must not be empty")
		}
		c.Name = name
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Gender != nil {
		gender, ok := domain.ParseGender(*in.Gender)
		if !ok {
			return domain.Category{}, apperr.Validation("gender must be one of: men, women")
		}
		c.Gender = gender
	}
	if in.ParentID != nil {
		// Empty reparents to the root; self-reference would create a cycle.
		parent := strings.TrimSpace(*in.ParentID)
		if parent == id {
			return domain.Category{}, apperr.Validation("category cannot be its own parent")
		}
		if parent != "" {
			if _, err := s.categories.Get(ctx, parent); err != nil {
				return domain.Category{}, apperr.Validation("parent category not found")
			}
		}
		c.ParentID = parent
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	return s.categories.Update(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDeleted {
		return apperr.NotFound("category")
	}
	c.IsDeleted = true
	c.IsActive = false
	_, err = s.categories.Update(ctx, c)
	return err
}
