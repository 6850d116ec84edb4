package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/apperr"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/go-chi/chi/v5"
)

type checkoutBody struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var body checkoutBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	owner := principalFrom(r.Context()).Key()
	order, err := s.orders.Checkout(r.Context(), owner, orderapp.CheckoutInput{
		ShippingAddress: body.ShippingAddress,
		PaymentMethod:   body.PaymentMethod,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Stock moved and the cart emptied: everything derived from either is
	// now stale.
	ids := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		ids = append(ids, it.ProductID)
	}
	s.invalidateCart(r.Context(), owner)
	s.invalidateOrders(r.Context(), owner)
	s.invalidateProducts(r.Context(), ids...)

	respondData(w, http.StatusCreated, toOrderJSON(order))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	owner := principalFrom(r.Context()).Key()

	s.cached(w, r, ordersKey(owner), s.ttl.OrderTTL, func(ctx context.Context) (any, error) {
		orders, err := s.orders.ListByOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		out := make([]orderJSON, 0, len(orders))
		for _, o := range orders {
			out = append(out, toOrderJSON(o))
		}
		return out, nil
	})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	order, err := s.orders.Get(r.Context(), chi.URLParam(r, "id"), p.Key(), p.IsAdmin())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toOrderJSON(order))
}

type statusBody struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	actor := principalFrom(r.Context()).Key()
	order, err := s.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), actor, body.Status, body.Reason)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateOrders(r.Context(), order.OwnerID)
	respondData(w, http.StatusOK, toOrderJSON(order))
}

func (s *Server) requestRefund(w http.ResponseWriter, r *http.Request) {
	owner := principalFrom(r.Context()).Key()
	order, err := s.orders.RequestRefund(r.Context(), chi.URLParam(r, "id"), owner)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateOrders(r.Context(), owner)
	respondData(w, http.StatusOK, toOrderJSON(order))
}
