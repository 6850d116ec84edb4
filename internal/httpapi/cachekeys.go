package httpapi

import (
	"context"
	"fmt"
	"log/slog"
)

// Cache key namespaces. Listing keys embed every effective query parameter so
// distinct queries never collide.
const (
	prefixProducts   = "products:"
	prefixSearch     = "search:"
	prefixCategories = "categories:"
	prefixCart       = "cart:"
	prefixOrders     = "orders:"
)

func productKey(id string) string { return prefixProducts + "id:" + id }

// listKeyFields serializes every parameter the listing handlers honor, so two
// requests that differ in any effective parameter never share an entry.
func listKeyFields(p listRequest) string {
	return fmt.Sprintf("p=%d:l=%d:s=%s:q=%s:c=%s:g=%s:min=%s:max=%s:stock=%s",
		p.page, p.limit, p.sort, p.search, p.category, p.gender,
		p.minPrice, p.maxPrice, p.inStock)
}

func productListKey(p listRequest) string {
	return prefixProducts + "list:" + listKeyFields(p)
}

func productsByCategoryKey(p listRequest) string {
	return prefixProducts + "cat:" + listKeyFields(p)
}

func searchKey(q string, p listRequest) string {
	return prefixSearch + "q=" + q + ":" + listKeyFields(p)
}

func categoriesKey(gender string, includeInactive bool) string {
	if gender == "" {
		gender = "all"
	}
	return fmt.Sprintf("%s%s:%t", prefixCategories, gender, includeInactive)
}

func cartKey(ownerKey string) string { return prefixCart + ownerKey }

func ordersKey(ownerKey string) string { return prefixOrders + ownerKey }

// The invalidation table below is the explicit map from each write path to
// the cache entries it can affect. Listings are invalidated by prefix because
// a single write's effect on filtered pages cannot be predicted; the policy
// over-invalidates rather than risk serving stale availability.

// invalidateProducts covers product create/update/delete and any stock
// movement (checkout included).
func (s *Server) invalidateProducts(ctx context.Context, productIDs ...string) {
	for _, id := range productIDs {
		s.drop(ctx, productKey(id))
	}
	s.dropPrefix(ctx, prefixProducts)
	s.dropPrefix(ctx, prefixSearch)
}

// invalidateCategories covers category writes; product listings join category
// state, so they go too.
func (s *Server) invalidateCategories(ctx context.Context) {
	s.dropPrefix(ctx, prefixCategories)
	s.dropPrefix(ctx, prefixProducts)
	s.dropPrefix(ctx, prefixSearch)
}

func (s *Server) invalidateCart(ctx context.Context, ownerKey string) {
	s.drop(ctx, cartKey(ownerKey))
}

func (s *Server) invalidateOrders(ctx context.Context, ownerKey string) {
	s.drop(ctx, ordersKey(ownerKey))
}

func (s *Server) drop(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn("cache del failed", slog.Any("err", err))
	}
}

func (s *Server) dropPrefix(ctx context.Context, prefix string) {
	if err := s.cache.DelPrefix(ctx, prefix); err != nil {
		s.log.Warn("cache del prefix failed", slog.String("prefix", prefix), slog.Any("err", err))
	}
}
