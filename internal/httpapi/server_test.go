package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartmem "github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogmem "github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	"github.com/dwikikusuma/storefront/internal/cache"
	"github.com/dwikikusuma/storefront/internal/httpapi"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderadapter "github.com/dwikikusuma/storefront/internal/order/infra/adapter"
	ordermem "github.com/dwikikusuma/storefront/internal/order/infra/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testAPI struct {
	router  http.Handler
	catalog *catalogapp.Service
	carts   *cartapp.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	catalog := catalogapp.NewService(catalogmem.NewProductStore(), catalogmem.NewCategoryStore())
	carts := cartapp.NewService(cartmem.NewCartRepo(), cartadapter.NewCatalogServiceReader(catalog))
	orders := orderapp.NewService(
		ordermem.NewOrderRepo(),
		orderadapter.NewCartServiceReader(carts),
		orderadapter.NewCatalogInventory(catalog),
	)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpapi.New(httpapi.Config{
		JWTSecret:  testSecret,
		ListingTTL: 5 * time.Minute,
		SearchTTL:  3 * time.Minute,
		CartTTL:    5 * time.Minute,
		OrderTTL:   5 * time.Minute,
	}, log, catalog, carts, orders, cache.NewMemory())

	return &testAPI{router: srv.Router(), catalog: catalog, carts: carts}
}

func mintToken(t *testing.T, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type apiEnvelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type call struct {
	method string
	path   string
	body   any
	token  string
	guest  string
}

func (a *testAPI) do(t *testing.T, c call) (int, apiEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.guest != "" {
		req.Header.Set("X-Guest-Token", c.guest)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	}
	return rec.Code, env
}

// seed creates a category and a product through the admin surface and returns
// their ids.
func (a *testAPI) seed(t *testing.T, admin string, price, stock int64) (string, string) {
	t.Helper()

	code, env := a.do(t, call{method: http.MethodPost, path: "/categories", token: admin, body: map[string]any{
		"name":   "Shoes",
		"gender": "men",
	}})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var cat struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	code, env = a.do(t, call{method: http.MethodPost, path: "/products", token: admin, body: map[string]any{
		"name":        "Runner",
		"description": "mesh",
		"currency":    "USD",
		"price":       price,
		"stock":       stock,
		"categoryId":  cat.ID,
	}})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var prod struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &prod))

	return cat.ID, prod.ID
}

func TestAuth(t *testing.T) {
	api := newTestAPI(t)

	t.Run("anonymous cart read rejected", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/cart"})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "fail", env.Status)
	})

	t.Run("garbage bearer token rejected", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/cart", token: "not-a-jwt"})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "fail", env.Status)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
		signed, err := tok.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		code, _ := api.do(t, call{method: http.MethodGet, path: "/cart", token: signed})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("non-admin write forbidden", func(t *testing.T) {
		user := mintToken(t, "u1", "customer")
		code, env := api.do(t, call{method: http.MethodPost, path: "/products", token: user, body: map[string]any{}})
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "fail", env.Status)
	})

	t.Run("guest cannot checkout", func(t *testing.T) {
		code, _ := api.do(t, call{method: http.MethodPost, path: "/cart/checkout", guest: "g1", body: map[string]any{}})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("public reads open", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products"})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "success", env.Status)
	})
}

func TestErrorEnvelope(t *testing.T) {
	api := newTestAPI(t)

	t.Run("missing product is fail not error", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products/ghost"})
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "fail", env.Status)
		assert.NotEmpty(t, env.Message)
	})

	t.Run("empty cart checkout is a 400", func(t *testing.T) {
		user := mintToken(t, "u1", "customer")
		code, env := api.do(t, call{method: http.MethodPost, path: "/cart/checkout", token: user, body: map[string]any{
			"shippingAddress": "1 Harbor St",
			"paymentMethod":   "online",
		}})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "fail", env.Status)
	})
}

func TestAdminCatalogFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	catID, prodID := api.seed(t, admin, 5000, 3)

	t.Run("product visible in listing", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products"})
		require.Equal(t, http.StatusOK, code)

		var page struct {
			Products []struct {
				ID    string `json:"id"`
				Price struct {
					Amount int64 `json:"amount"`
				} `json:"price"`
			} `json:"products"`
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		require.Equal(t, 1, page.Total)
		assert.Equal(t, prodID, page.Products[0].ID)
		assert.Equal(t, int64(5000), page.Products[0].Price.Amount)
	})

	t.Run("category listing includes it", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/categories"})
		require.Equal(t, http.StatusOK, code)

		var cats []struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &cats))
		require.Len(t, cats, 1)
		assert.Equal(t, catID, cats[0].ID)
	})

	t.Run("products by category", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products/category/" + catID})
		require.Equal(t, http.StatusOK, code)

		var page struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, 1, page.Total)
	})

	t.Run("delete hides product", func(t *testing.T) {
		code, _ := api.do(t, call{method: http.MethodDelete, path: "/products/" + prodID, token: admin})
		require.Equal(t, http.StatusOK, code)

		code, _ = api.do(t, call{method: http.MethodGet, path: "/products/" + prodID})
		assert.Equal(t, http.StatusNotFound, code)
	})
}

// Listings are served from cache until a write path invalidates them: an edit
// made behind the API's back keeps serving the stale page, an edit through the
// API does not.
func TestListingCacheInvalidation(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	_, prodID := api.seed(t, admin, 5000, 3)

	priceOf := func(t *testing.T) int64 {
		t.Helper()
		code, env := api.do(t, call{method: http.MethodGet, path: "/products"})
		require.Equal(t, http.StatusOK, code)
		var page struct {
			Products []struct {
				Price struct {
					Amount int64 `json:"amount"`
				} `json:"price"`
			} `json:"products"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		require.Len(t, page.Products, 1)
		return page.Products[0].Price.Amount
	}

	require.Equal(t, int64(5000), priceOf(t))

	// A direct service write skips the API invalidation; the cached listing
	// keeps serving the old price.
	hidden := int64(6000)
	_, err := api.catalog.UpdateProduct(context.Background(), prodID, catalogapp.UpdateProductInput{Amount: &hidden})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), priceOf(t), "stale cached page expected")

	// The same write through the API invalidates the listing prefix.
	code, env := api.do(t, call{method: http.MethodPut, path: "/products/" + prodID, token: admin, body: map[string]any{
		"price": 7000,
	}})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, int64(7000), priceOf(t))
}

func TestGuestCartFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	_, prodID := api.seed(t, admin, 5000, 3)

	code, env := api.do(t, call{method: http.MethodPost, path: "/cart/guest", body: map[string]any{
		"productId": prodID,
		"quantity":  2,
	}})
	require.Equal(t, http.StatusOK, code, env.Message)

	var minted struct {
		GuestToken string `json:"guestToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &minted))
	require.NotEmpty(t, minted.GuestToken)

	code, env = api.do(t, call{method: http.MethodGet, path: "/cart", guest: minted.GuestToken})
	require.Equal(t, http.StatusOK, code)

	var view struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int64  `json:"quantity"`
		} `json:"items"`
		Total struct {
			Amount int64 `json:"amount"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, prodID, view.Items[0].ProductID)
	assert.Equal(t, int64(2), view.Items[0].Quantity)
	assert.Equal(t, int64(10000), view.Total.Amount)
}

func TestCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	user := mintToken(t, "u1", "customer")
	_, prodID := api.seed(t, admin, 5000, 3)

	code, env := api.do(t, call{method: http.MethodPost, path: "/cart", token: user, body: map[string]any{
		"productId": prodID,
		"quantity":  2,
	}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = api.do(t, call{method: http.MethodPost, path: "/cart/checkout", token: user, body: map[string]any{
		"shippingAddress": "1 Harbor St",
		"paymentMethod":   "on_receive",
	}})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  struct {
			Amount int64 `json:"amount"`
		} `json:"total"`
		StatusHistory []struct {
			Status string `json:"status"`
		} `json:"statusHistory"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, int64(10000), order.Total.Amount)
	require.Len(t, order.StatusHistory, 1)

	t.Run("cart emptied", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/cart", token: user})
		require.Equal(t, http.StatusOK, code)
		var view struct {
			Items []any `json:"items"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Empty(t, view.Items)
	})

	t.Run("stock visible after invalidation", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products/" + prodID})
		require.Equal(t, http.StatusOK, code)
		var prod struct {
			Stock int64 `json:"stock"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &prod))
		assert.Equal(t, int64(1), prod.Stock)
	})

	t.Run("order listed for its owner", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/orders", token: user})
		require.Equal(t, http.StatusOK, code)
		var orders []struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &orders))
		require.Len(t, orders, 1)
		assert.Equal(t, order.ID, orders[0].ID)
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		other := mintToken(t, "u2", "customer")
		code, _ := api.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/orders/%s", order.ID), token: other})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("admin drives the status", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodPut, path: fmt.Sprintf("/orders/%s", order.ID), token: admin, body: map[string]any{
			"status": "Preparing",
			"reason": "packing",
		}})
		require.Equal(t, http.StatusOK, code, env.Message)

		var updated struct {
			Status        string `json:"status"`
			StatusHistory []struct {
				Status string `json:"status"`
				Reason string `json:"reason"`
			} `json:"statusHistory"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "Preparing", updated.Status)
		require.Len(t, updated.StatusHistory, 2)
		assert.Equal(t, "packing", updated.StatusHistory[1].Reason)
	})

	t.Run("customer cannot drive the status", func(t *testing.T) {
		code, _ := api.do(t, call{method: http.MethodPut, path: fmt.Sprintf("/orders/%s", order.ID), token: user, body: map[string]any{
			"status": "Shipped",
		}})
		assert.Equal(t, http.StatusForbidden, code)
	})
}

// Two listing requests that differ in any honored parameter must not share a
// cache entry.
func TestListingKeysCoverEffectiveQuery(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	catID, _ := api.seed(t, admin, 5000, 3)

	code, env := api.do(t, call{method: http.MethodPost, path: "/products", token: admin, body: map[string]any{
		"name":        "Runner Pro",
		"description": "mesh",
		"currency":    "USD",
		"price":       9000,
		"stock":       2,
		"categoryId":  catID,
	}})
	require.Equal(t, http.StatusCreated, code, env.Message)

	t.Run("search sort variants", func(t *testing.T) {
		firstPrice := func(sort string) int64 {
			t.Helper()
			code, env := api.do(t, call{method: http.MethodGet, path: "/products/search?q=run&sort=" + sort})
			require.Equal(t, http.StatusOK, code)
			var page struct {
				Products []struct {
					Price struct {
						Amount int64 `json:"amount"`
					} `json:"price"`
				} `json:"products"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &page))
			require.NotEmpty(t, page.Products)
			return page.Products[0].Price.Amount
		}

		assert.Equal(t, int64(5000), firstPrice("price_asc"))
		assert.Equal(t, int64(9000), firstPrice("price_desc"))
	})

	t.Run("category listing price filter variants", func(t *testing.T) {
		totalWith := func(query string) int {
			t.Helper()
			code, env := api.do(t, call{method: http.MethodGet, path: "/products/category/" + catID + query})
			require.Equal(t, http.StatusOK, code)
			var page struct {
				Total int `json:"total"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &page))
			return page.Total
		}

		assert.Equal(t, 2, totalWith(""))
		assert.Equal(t, 1, totalWith("?minPrice=6000"))
	})
}

func TestListingHidesOutOfStockByDefault(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	catID, prodID := api.seed(t, admin, 5000, 3)

	code, env := api.do(t, call{method: http.MethodPost, path: "/products", token: admin, body: map[string]any{
		"name":        "Boot",
		"description": "leather",
		"currency":    "USD",
		"price":       12000,
		"stock":       0,
		"categoryId":  catID,
	}})
	require.Equal(t, http.StatusCreated, code, env.Message)

	total := func(query string) int {
		t.Helper()
		code, env := api.do(t, call{method: http.MethodGet, path: "/products" + query})
		require.Equal(t, http.StatusOK, code)
		var page struct {
			Total    int `json:"total"`
			Products []struct {
				ID string `json:"id"`
			} `json:"products"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		if query == "" {
			require.Len(t, page.Products, 1)
			assert.Equal(t, prodID, page.Products[0].ID)
		}
		return page.Total
	}

	assert.Equal(t, 1, total(""))
	assert.Equal(t, 1, total("?inStock=false"))
	assert.Equal(t, 2, total("?inStock=all"))
}

func TestSearchEndpoint(t *testing.T) {
	api := newTestAPI(t)
	admin := mintToken(t, "admin1", "admin")
	api.seed(t, admin, 5000, 3)

	t.Run("short query rejected", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products/search?q=r"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "fail", env.Status)
	})

	t.Run("match by name", func(t *testing.T) {
		code, env := api.do(t, call{method: http.MethodGet, path: "/products/search?q=run"})
		require.Equal(t, http.StatusOK, code)
		var page struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, 1, page.Total)
	})
}
