package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/google/uuid"
)

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	owner := principalFrom(r.Context()).Key()

	s.cached(w, r, cartKey(owner), s.ttl.CartTTL, func(ctx context.Context) (any, error) {
		view, err := s.carts.View(ctx, owner)
		if err != nil {
			return nil, err
		}
		return toCartViewJSON(view), nil
	})
}

type cartItemBody struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	owner := principalFrom(r.Context()).Key()
	if err := s.carts.AddItem(r.Context(), owner, body.ProductID, body.Quantity); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCart(r.Context(), owner)
	respondMessage(w, http.StatusOK, "item added to cart")
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	owner := principalFrom(r.Context()).Key()
	if err := s.carts.UpdateItem(r.Context(), owner, body.ProductID, body.Quantity); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCart(r.Context(), owner)
	respondMessage(w, http.StatusOK, "cart item updated")
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	owner := principalFrom(r.Context()).Key()
	if err := s.carts.RemoveItem(r.Context(), owner, body.ProductID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCart(r.Context(), owner)
	respondMessage(w, http.StatusOK, "item removed from cart")
}

type guestCartBody struct {
	ProductID  string `json:"productId"`
	Quantity   int64  `json:"quantity"`
	GuestToken string `json:"guestToken"`
}

// addToCartGuest serves carts for callers without an account. The first call
// without a token mints one; the caller replays it on later requests.
func (s *Server) addToCartGuest(w http.ResponseWriter, r *http.Request) {
	var body guestCartBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}
	if body.GuestToken == "" {
		body.GuestToken = uuid.NewString()
	}

	owner := Principal{GuestToken: body.GuestToken}.Key()
	if err := s.carts.AddItem(r.Context(), owner, body.ProductID, body.Quantity); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateCart(r.Context(), owner)
	respondData(w, http.StatusOK, map[string]string{"guestToken": body.GuestToken})
}
