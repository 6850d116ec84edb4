// Package httpapi carries the REST surface: routing, principal resolution,
// cache fronting and the error envelope.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/cache"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	JWTSecret string
	Dev       bool

	ListingTTL time.Duration
	SearchTTL  time.Duration
	CartTTL    time.Duration
	OrderTTL   time.Duration
}

type Server struct {
	log     *slog.Logger
	catalog *catalogapp.Service
	carts   *cartapp.Service
	orders  *orderapp.Service
	cache   cache.Cache

	jwtSecret []byte
	dev       bool
	ttl       Config
}

func New(cfg Config, log *slog.Logger, catalog *catalogapp.Service, carts *cartapp.Service, orders *orderapp.Service, c cache.Cache) *Server {
	return &Server{
		log:       log,
		catalog:   catalog,
		carts:     carts,
		orders:    orders,
		cache:     c,
		jwtSecret: []byte(cfg.JWTSecret),
		dev:       cfg.Dev,
		ttl:       cfg,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.withPrincipal)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/search", s.searchProducts)
		r.Get("/category/{categoryID}", s.productsByCategory)
		r.Get("/{id}", s.getProduct)
		r.Post("/", s.requireAdmin(s.createProduct))
		r.Put("/{id}", s.requireAdmin(s.updateProduct))
		r.Delete("/{id}", s.requireAdmin(s.deleteProduct))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.listCategories)
		r.Get("/{id}", s.getCategory)
		r.Post("/", s.requireAdmin(s.createCategory))
		r.Put("/{id}", s.requireAdmin(s.updateCategory))
		r.Delete("/{id}", s.requireAdmin(s.deleteCategory))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.requireOwner(s.getCart))
		r.Post("/", s.requireOwner(s.addToCart))
		r.Put("/item", s.requireOwner(s.updateCartItem))
		r.Delete("/item", s.requireOwner(s.removeCartItem))
		r.Post("/checkout", s.requireUser(s.checkout))
		r.Post("/guest", s.addToCartGuest)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.requireUser(s.checkout))
		r.Get("/", s.requireUser(s.listOrders))
		r.Get("/{id}", s.requireUser(s.getOrder))
		r.Put("/{id}", s.requireAdmin(s.updateOrderStatus))
		r.Post("/{id}/refund", s.requireUser(s.requestRefund))
	})

	return r
}

// cached fronts a read with the cache: on hit the stored payload is replayed
// verbatim, on miss the computed payload is stored under the key with the ttl.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) {
	ctx := r.Context()

	if raw, err := s.cache.Get(ctx, key); err == nil {
		writeJSON(w, http.StatusOK, envelope{Status: "success", Data: json.RawMessage(raw)})
		return
	}

	data, err := compute(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.log.Warn("cache set failed", slog.String("key", key), slog.Any("err", err))
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: json.RawMessage(raw)})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
