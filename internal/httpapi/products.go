package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dwikikusuma/storefront/internal/apperr"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/go-chi/chi/v5"
)

// listRequest keeps the raw query parameters so cache keys stay deterministic
// for identical requests.
type listRequest struct {
	page     int
	limit    int
	sort     string
	search   string
	category string
	gender   string
	minPrice string
	maxPrice string
	inStock  string
}

func parseListRequest(q url.Values) listRequest {
	req := listRequest{
		page:     1,
		limit:    10,
		sort:     q.Get("sort"),
		search:   q.Get("search"),
		category: q.Get("category"),
		gender:   q.Get("gender"),
		minPrice: q.Get("minPrice"),
		maxPrice: q.Get("maxPrice"),
		inStock:  q.Get("inStock"),
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		req.page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		req.limit = n
	}
	// Listings hide out-of-stock products unless the caller asks otherwise;
	// any value other than true/false (e.g. "all") disables the filter.
	if req.inStock == "" {
		req.inStock = "true"
	}
	return req
}

func (req listRequest) toParams() catalogapp.ListParams {
	params := catalogapp.ListParams{
		Search:     req.search,
		CategoryID: req.category,
		Gender:     req.gender,
		Sort:       req.sort,
		Page:       req.page,
		Limit:      req.limit,
	}
	// Unparsable price bounds are ignored rather than rejected.
	if n, err := strconv.ParseInt(req.minPrice, 10, 64); err == nil {
		params.MinPrice = &n
	}
	if n, err := strconv.ParseInt(req.maxPrice, 10, 64); err == nil {
		params.MaxPrice = &n
	}
	if req.inStock == "true" {
		v := true
		params.InStock = &v
	} else if req.inStock == "false" {
		v := false
		params.InStock = &v
	}
	return params
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	req := parseListRequest(r.URL.Query())

	s.cached(w, r, productListKey(req), s.ttl.ListingTTL, func(ctx context.Context) (any, error) {
		page, err := s.catalog.ListProducts(ctx, req.toParams())
		if err != nil {
			return nil, err
		}
		return toProductPageJSON(page), nil
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.cached(w, r, productKey(id), s.ttl.ListingTTL, func(ctx context.Context) (any, error) {
		p, err := s.catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return toProductJSON(p), nil
	})
}

func (s *Server) productsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")
	req := parseListRequest(r.URL.Query())
	req.category = categoryID

	s.cached(w, r, productsByCategoryKey(req), s.ttl.ListingTTL, func(ctx context.Context) (any, error) {
		page, err := s.catalog.ListProducts(ctx, req.toParams())
		if err != nil {
			return nil, err
		}
		return toProductPageJSON(page), nil
	})
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	req := parseListRequest(r.URL.Query())

	s.cached(w, r, searchKey(q, req), s.ttl.SearchTTL, func(ctx context.Context) (any, error) {
		page, err := s.catalog.SearchProducts(ctx, q, req.toParams())
		if err != nil {
			return nil, err
		}
		return toProductPageJSON(page), nil
	})
}

type productBody struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *int64   `json:"price"`
	Currency    string   `json:"currency"`
	Stock       *int64   `json:"stock"`
	CategoryID  *string  `json:"categoryId"`
	Photos      []string `json:"photos"`
	IsActive    *bool    `json:"isActive"`
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	in := catalogapp.CreateProductInput{
		Currency: body.Currency,
		Photos:   body.Photos,
	}
	if body.Name != nil {
		in.Name = *body.Name
	}
	if body.Description != nil {
		in.Description = *body.Description
	}
	if body.Price != nil {
		in.Amount = *body.Price
	}
	if body.Stock != nil {
		in.Stock = *body.Stock
	}
	if body.CategoryID != nil {
		in.CategoryID = *body.CategoryID
	}

	p, err := s.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateProducts(r.Context())
	respondData(w, http.StatusCreated, toProductJSON(p))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body productBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	p, err := s.catalog.UpdateProduct(r.Context(), id, catalogapp.UpdateProductInput{
		Name:        body.Name,
		Description: body.Description,
		Amount:      body.Price,
		Stock:       body.Stock,
		CategoryID:  body.CategoryID,
		Photos:      body.Photos,
		IsActive:    body.IsActive,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateProducts(r.Context(), id)
	respondData(w, http.StatusOK, toProductJSON(p))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.catalog.DeleteProduct(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateProducts(r.Context(), id)
	respondMessage(w, http.StatusOK, "product deleted")
}
