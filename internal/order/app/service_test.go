package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/apperr"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartmem "github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogmem "github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	orderadapter "github.com/dwikikusuma/storefront/internal/order/infra/adapter"
	ordermem "github.com/dwikikusuma/storefront/internal/order/infra/memory"
)

type fixture struct {
	catalog *catalogapp.Service
	carts   *cartapp.Service
	orders  *orderapp.Service
	catID   string
	now     *time.Time
}

func newFixture(t *testing.T, opts ...orderapp.Option) *fixture {
	t.Helper()
	catalog := catalogapp.NewService(catalogmem.NewProductStore(), catalogmem.NewCategoryStore())

	cat, err := catalog.CreateCategory(context.Background(), catalogapp.CreateCategoryInput{
		Name:   "Outdoor",
		Gender: "men",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	carts := cartapp.NewService(cartmem.NewCartRepo(), cartadapter.NewCatalogServiceReader(catalog))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{catalog: catalog, carts: carts, catID: cat.ID, now: &now}

	opts = append([]orderapp.Option{orderapp.WithClock(func() time.Time { return *f.now })}, opts...)
	f.orders = orderapp.NewService(
		ordermem.NewOrderRepo(),
		orderadapter.NewCartServiceReader(carts),
		orderadapter.NewCatalogInventory(catalog),
		opts...,
	)
	return f
}

func (f *fixture) product(t *testing.T, name string, price, stock int64) string {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalogapp.CreateProductInput{
		Name: name, Description: "x", Currency: "USD", Amount: price, Stock: stock, CategoryID: f.catID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p.ID
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.catalog.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Stock
}

var checkoutIn = orderapp.CheckoutInput{
	ShippingAddress: "1 Harbor St",
	PaymentMethod:   "on_receive",
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 3)

	if err := f.carts.AddItem(ctx, "user:u1", pid, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	order, err := f.orders.Checkout(ctx, "user:u1", checkoutIn)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Fatalf("status=%s", order.Status)
	}
	if order.Total.Amount != 40000 {
		t.Fatalf("total=%d", order.Total.Amount)
	}
	if len(order.Items) != 1 || order.Items[0].PriceAtPurchase.Amount != 20000 {
		t.Fatalf("items=%+v", order.Items)
	}
	if len(order.History) != 1 || order.History[0].Status != domain.StatusPending {
		t.Fatalf("history=%+v", order.History)
	}
	if got := f.stock(t, pid); got != 1 {
		t.Fatalf("stock=%d, want 1", got)
	}

	view, err := f.carts.View(ctx, "user:u1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatal("cart should be cleared after checkout")
	}
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 3)

	t.Run("empty cart", func(t *testing.T) {
		_, err := f.orders.Checkout(ctx, "user:nobody", checkoutIn)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation, got %v", err)
		}
	})

	t.Run("missing address", func(t *testing.T) {
		_, err := f.orders.Checkout(ctx, "user:u1", orderapp.CheckoutInput{PaymentMethod: "online"})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation, got %v", err)
		}
	})

	t.Run("bad payment method", func(t *testing.T) {
		_, err := f.orders.Checkout(ctx, "user:u1", orderapp.CheckoutInput{
			ShippingAddress: "1 Harbor St",
			PaymentMethod:   "cheque",
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation, got %v", err)
		}
	})

	t.Run("insufficient stock leaves stock untouched", func(t *testing.T) {
		if err := f.carts.AddItem(ctx, "user:u2", pid, 3); err != nil {
			t.Fatal(err)
		}
		if err := f.catalog.ReserveStock(ctx, pid, 1); err != nil {
			t.Fatal(err)
		}

		_, err := f.orders.Checkout(ctx, "user:u2", checkoutIn)
		if apperr.KindOf(err) != apperr.KindInsufficientStock {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		if got := f.stock(t, pid); got != 2 {
			t.Fatalf("stock=%d, failed checkout must not move stock", got)
		}
	})
}

// failingInventory delegates to a real inventory but fails Reserve for one
// product, recording every Release so the rollback can be asserted.
type failingInventory struct {
	orderapp.Inventory

	failOn string

	mu       sync.Mutex
	released map[string]int64
}

func (f *failingInventory) Reserve(ctx context.Context, id string, qty int64) error {
	if id == f.failOn {
		return apperr.InsufficientStock("forced")
	}
	return f.Inventory.Reserve(ctx, id, qty)
}

func (f *failingInventory) Release(ctx context.Context, id string, qty int64) error {
	f.mu.Lock()
	if f.released == nil {
		f.released = map[string]int64{}
	}
	f.released[id] += qty
	f.mu.Unlock()
	return f.Inventory.Release(ctx, id, qty)
}

func TestCheckoutRollsBackOnPartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.product(t, "Tent", 20000, 5)
	second := f.product(t, "Stove", 8000, 5)

	inv := &failingInventory{
		Inventory: orderadapter.NewCatalogInventory(f.catalog),
		failOn:    second,
	}
	orders := orderapp.NewService(
		ordermem.NewOrderRepo(),
		orderadapter.NewCartServiceReader(f.carts),
		inv,
	)

	if err := f.carts.AddItem(ctx, "user:u1", first, 2); err != nil {
		t.Fatal(err)
	}
	if err := f.carts.AddItem(ctx, "user:u1", second, 1); err != nil {
		t.Fatal(err)
	}

	_, err := orders.Checkout(ctx, "user:u1", checkoutIn)
	if apperr.KindOf(err) != apperr.KindInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if inv.released[first] != 2 {
		t.Fatalf("first line not released: %v", inv.released)
	}
	if got := f.stock(t, first); got != 5 {
		t.Fatalf("stock=%d, want 5 after rollback", got)
	}

	view, _ := f.carts.View(ctx, "user:u1")
	if len(view.Items) != 2 {
		t.Fatal("failed checkout must not clear the cart")
	}
}

func TestCheckoutVanishedProductIsOutOfStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 3)

	if err := f.carts.AddItem(ctx, "user:u1", pid, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.catalog.DeleteProduct(ctx, pid); err != nil {
		t.Fatal(err)
	}

	_, err := f.orders.Checkout(ctx, "user:u1", checkoutIn)
	if apperr.KindOf(err) != apperr.KindInsufficientStock {
		t.Fatalf("vanished product should read as out of stock, got %v", err)
	}
}

// staticCart feeds checkout a fixed line set, bypassing the cart service's
// own invariants.
type staticCart struct {
	lines []orderapp.CartLine
}

func (s staticCart) Lines(ctx context.Context, ownerID string) ([]orderapp.CartLine, error) {
	return s.lines, nil
}

func (s staticCart) Clear(ctx context.Context, ownerID string) error { return nil }

func TestCheckoutRejectsMixedCurrencies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	usd := f.product(t, "Tent", 20000, 5)

	eur, err := f.catalog.CreateProduct(ctx, catalogapp.CreateProductInput{
		Name: "Stove", Description: "x", Currency: "EUR", Amount: 8000, Stock: 5, CategoryID: f.catID,
	})
	if err != nil {
		t.Fatal(err)
	}

	orders := orderapp.NewService(
		ordermem.NewOrderRepo(),
		staticCart{lines: []orderapp.CartLine{
			{ProductID: usd, Quantity: 1},
			{ProductID: eur.ID, Quantity: 1},
		}},
		orderadapter.NewCatalogInventory(f.catalog),
	)

	_, err = orders.Checkout(ctx, "user:u1", checkoutIn)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("mixed currencies should be rejected, got %v", err)
	}
	if got := f.stock(t, usd); got != 5 {
		t.Fatalf("stock=%d, rejected checkout must not move stock", got)
	}
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 1)

	owners := []string{"user:u1", "user:u2"}
	for _, owner := range owners {
		if err := f.carts.AddItem(ctx, owner, pid, 1); err != nil {
			t.Fatalf("add for %s: %v", owner, err)
		}
	}

	errs := make([]error, len(owners))
	var wg sync.WaitGroup
	for i, owner := range owners {
		i, owner := i, owner
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.orders.Checkout(ctx, owner, checkoutIn)
		}()
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.KindOf(err) == apperr.KindInsufficientStock:
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || short != 1 {
		t.Fatalf("ok=%d short=%d, want exactly one winner", ok, short)
	}

	p, err := f.catalog.GetProduct(ctx, pid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Stock != 0 {
		t.Fatalf("stock=%d, want 0", p.Stock)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 3)

	if err := f.carts.AddItem(ctx, "user:u1", pid, 1); err != nil {
		t.Fatal(err)
	}
	created, err := f.orders.Checkout(ctx, "user:u1", checkoutIn)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("owner reads own order", func(t *testing.T) {
		if _, err := f.orders.Get(ctx, created.ID, "user:u1", false); err != nil {
			t.Fatalf("get: %v", err)
		}
	})

	t.Run("stranger sees not found", func(t *testing.T) {
		_, err := f.orders.Get(ctx, created.ID, "user:u2", false)
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("admin reads anyone", func(t *testing.T) {
		if _, err := f.orders.Get(ctx, created.ID, "user:admin", true); err != nil {
			t.Fatalf("get: %v", err)
		}
	})
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 3)

	if err := f.carts.AddItem(ctx, "user:u1", pid, 1); err != nil {
		t.Fatal(err)
	}
	created, err := f.orders.Checkout(ctx, "user:u1", checkoutIn)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := f.orders.UpdateStatus(ctx, created.ID, "user:admin", "Recieved", "")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation, got %v", err)
		}
	})

	t.Run("back to pending rejected", func(t *testing.T) {
		_, err := f.orders.UpdateStatus(ctx, created.ID, "user:admin", "Pending", "")
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	steps := []domain.Status{domain.StatusPreparing, domain.StatusShipped, domain.StatusReceived}
	for _, target := range steps {
		*f.now = f.now.Add(time.Hour)
		if _, err := f.orders.UpdateStatus(ctx, created.ID, "user:admin", string(target), "step"); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	o, err := f.orders.Get(ctx, created.ID, "user:admin", true)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusReceived {
		t.Fatalf("status=%s", o.Status)
	}
	if len(o.History) != 4 {
		t.Fatalf("history has %d entries, want 4", len(o.History))
	}
	for i := 1; i < len(o.History); i++ {
		if o.History[i].At.Before(o.History[i-1].At) {
			t.Fatalf("history timestamps not monotonic: %+v", o.History)
		}
	}

	t.Run("terminal state frozen", func(t *testing.T) {
		_, err := f.orders.UpdateStatus(ctx, created.ID, "user:admin", "Shipped", "")
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestRequestRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, orderapp.WithRefundWindow(48*time.Hour))
	pid := f.product(t, "Tent", 20000, 5)

	checkout := func(owner string) domain.Order {
		t.Helper()
		if err := f.carts.AddItem(ctx, owner, pid, 1); err != nil {
			t.Fatal(err)
		}
		o, err := f.orders.Checkout(ctx, owner, checkoutIn)
		if err != nil {
			t.Fatal(err)
		}
		return o
	}

	t.Run("only received orders", func(t *testing.T) {
		o := checkout("user:u1")
		_, err := f.orders.RequestRefund(ctx, o.ID, "user:u1")
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("expected conflict for pending order, got %v", err)
		}
	})

	t.Run("owner only", func(t *testing.T) {
		o := checkout("user:u2")
		if _, err := f.orders.UpdateStatus(ctx, o.ID, "user:admin", "Received", ""); err != nil {
			t.Fatal(err)
		}
		_, err := f.orders.RequestRefund(ctx, o.ID, "user:intruder")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("within window", func(t *testing.T) {
		o := checkout("user:u3")
		if _, err := f.orders.UpdateStatus(ctx, o.ID, "user:admin", "Received", ""); err != nil {
			t.Fatal(err)
		}
		*f.now = f.now.Add(24 * time.Hour)

		got, err := f.orders.RequestRefund(ctx, o.ID, "user:u3")
		if err != nil {
			t.Fatalf("refund: %v", err)
		}
		if got.Status != domain.StatusReturned {
			t.Fatalf("status=%s", got.Status)
		}
		last := got.History[len(got.History)-1]
		if last.Status != domain.StatusReturned || last.Reason == "" {
			t.Fatalf("last entry=%+v", last)
		}
	})

	t.Run("window closed", func(t *testing.T) {
		o := checkout("user:u4")
		if _, err := f.orders.UpdateStatus(ctx, o.ID, "user:admin", "Received", ""); err != nil {
			t.Fatal(err)
		}
		*f.now = f.now.Add(72 * time.Hour)

		_, err := f.orders.RequestRefund(ctx, o.ID, "user:u4")
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("expected conflict after deadline, got %v", err)
		}
	})
}

func TestListByOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Tent", 20000, 10)

	var ids []string
	for i := 0; i < 3; i++ {
		if err := f.carts.AddItem(ctx, "user:u1", pid, 1); err != nil {
			t.Fatal(err)
		}
		o, err := f.orders.Checkout(ctx, "user:u1", checkoutIn)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, o.ID)
		*f.now = f.now.Add(time.Minute)
	}

	got, err := f.orders.ListByOwner(ctx, "user:u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d orders", len(got))
	}
	if got[0].ID != ids[2] || got[2].ID != ids[0] {
		t.Fatal("orders should list newest first")
	}
}
