package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/apperr"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	gender := r.URL.Query().Get("gender")
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	s.cached(w, r, categoriesKey(gender, includeInactive), s.ttl.ListingTTL, func(ctx context.Context) (any, error) {
		cats, err := s.catalog.ListCategories(ctx, gender, includeInactive)
		if err != nil {
			return nil, err
		}
		out := make([]categoryJSON, 0, len(cats))
		for _, c := range cats {
			out = append(out, toCategoryJSON(c))
		}
		return out, nil
	})
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toCategoryJSON(c))
}

type categoryBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Gender      *string `json:"gender"`
	ParentID    *string `json:"parentId"`
	IsActive    *bool   `json:"isActive"`
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	in := catalogapp.CreateCategoryInput{}
	if body.Name != nil {
		in.Name = *body.Name
	}
	if body.Description != nil {
		in.Description = *body.Description
	}
	if body.Gender != nil {
		in.Gender = *body.Gender
	}
	if body.ParentID != nil {
		in.ParentID = *body.ParentID
	}

	c, err := s.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCategories(r.Context())
	respondData(w, http.StatusCreated, toCategoryJSON(c))
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	c, err := s.catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), catalogapp.UpdateCategoryInput{
		Name:        body.Name,
		Description: body.Description,
		Gender:      body.Gender,
		ParentID:    body.ParentID,
		IsActive:    body.IsActive,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCategories(r.Context())
	respondData(w, http.StatusOK, toCategoryJSON(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCategories(r.Context())
	respondMessage(w, http.StatusOK, "category deleted")
}
