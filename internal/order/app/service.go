package app

import (
	"context"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRefundWindow  = 14 * 24 * time.Hour
	defaultMaxConcurrent = 10
)

type Service struct {
	orders    OrderRepo
	cart      CartReader
	inventory Inventory

	refundWindow  time.Duration
	maxConcurrent int
	now           func() time.Time
}

type Option func(*Service)

func WithRefundWindow(d time.Duration) Option {
	return func(s *Service) { s.refundWindow = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders OrderRepo, cart CartReader, inventory Inventory, opts ...Option) *Service {
	s := &Service{
		orders:        orders,
		cart:          cart,
		inventory:     inventory,
		refundWindow:  defaultRefundWindow,
		maxConcurrent: defaultMaxConcurrent,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CheckoutInput struct {
	ShippingAddress string
	PaymentMethod   string
}

// Checkout converts the owner's cart into an order. Every line is validated
// against live catalog state before any stock moves; reservations then run
// line by line, and the first failure releases everything already reserved,
// so a failed checkout never leaves stock decremented.
func (s *Service) Checkout(ctx context.Context, ownerID string, in CheckoutInput) (domain.Order, error) {
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if in.ShippingAddress == "" {
		return domain.Order{}, apperr.Validation("shipping address is required")
	}
	method, ok := domain.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return domain.Order{}, apperr.Validation("invalid payment method")
	}

	lines, err := s.cart.Lines(ctx, ownerID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, apperr.Validation("cart is empty")
	}

	products, err := s.resolveProducts(ctx, lines)
	if err != nil {
		return domain.Order{}, err
	}

	// Pre-check pass: nothing is decremented until every line clears. A
	// product that vanished or went inactive since it entered the cart counts
	// as insufficient stock, not a missing resource.
	currency := ""
	for i, line := range lines {
		p := products[i]
		if !p.Visible {
			return domain.Order{}, apperr.InsufficientStock(productName(p))
		}
		if p.Stock < line.Quantity {
			return domain.Order{}, apperr.InsufficientStock(p.Name)
		}
		if currency == "" {
			currency = p.Currency
		} else if p.Currency != currency {
			return domain.Order{}, apperr.Validation("cart lines use more than one currency")
		}
	}

	reserved, err := s.reserveAll(ctx, lines)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.now()
	items := make([]domain.OrderItem, len(lines))
	total := domain.Money{}
	for i, line := range lines {
		p := products[i]
		items[i] = domain.OrderItem{
			ProductID:       p.ID,
			Name:            p.Name,
			Quantity:        line.Quantity,
			PriceAtPurchase: domain.Money{Currency: p.Currency, Amount: p.Amount},
		}
		total.Currency = p.Currency
		total.Amount += p.Amount * line.Quantity
	}

	order := domain.Order{
		OwnerID:         ownerID,
		Items:           items,
		Total:           total,
		Status:          domain.StatusPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   method,
		History: []domain.StatusEntry{{
			Status:    domain.StatusPending,
			ChangedBy: ownerID,
			At:        now,
		}},
		IsRefundEligible: true,
		RefundDeadline:   now.Add(s.refundWindow),
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.releaseAll(ctx, reserved)
		return domain.Order{}, apperr.Wrap(apperr.KindInternal, "persist order", err)
	}

	if err := s.cart.Clear(ctx, ownerID); err != nil {
		// The order is committed; a stale cart is recoverable, losing the
		// order is not.
		return created, nil
	}

	return created, nil
}

func productName(p Product) string {
	if p.Name == "" {
		return "product"
	}
	return p.Name
}

func (s *Service) resolveProducts(ctx context.Context, lines []CartLine) ([]Product, error) {
	products := make([]Product, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for idx := range lines {
		idx := idx
		g.Go(func() error {
			line := lines[idx]
			if line.Quantity < 1 {
				return apperr.Validation("quantity must be at least 1")
			}
			p, err := s.inventory.Product(ctx, line.ProductID)
			if err != nil {
				return err
			}
			products[idx] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) reserveAll(ctx context.Context, lines []CartLine) ([]CartLine, error) {
	reserved := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if err := s.inventory.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, line)
	}
	return reserved, nil
}

func (s *Service) releaseAll(ctx context.Context, reserved []CartLine) {
	for _, line := range reserved {
		_ = s.inventory.Release(ctx, line.ProductID, line.Quantity)
	}
}

func (s *Service) Get(ctx context.Context, id, requesterID string, admin bool) (domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	// Another principal's order reads as absent, not forbidden.
	if !admin && o.OwnerID != requesterID {
		return domain.Order{}, apperr.NotFound("order")
	}
	return o, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

// UpdateStatus performs an administrative transition. The target is checked
// against the closed enum and the transition rules before anything mutates;
// the history entry is appended, never rewritten.
func (s *Service) UpdateStatus(ctx context.Context, id, actorID, status, reason string) (domain.Order, error) {
	target, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Order{}, apperr.Validation("invalid order status")
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !domain.CanTransition(o.Status, target) {
		return domain.Order{}, apperr.Conflict("status transition not allowed")
	}

	o.Status = target
	o.History = append(o.History, domain.StatusEntry{
		Status:    target,
		ChangedBy: actorID,
		Reason:    reason,
		At:        s.now(),
	})

	return s.orders.Update(ctx, o)
}

// RequestRefund moves a Received order to Returned for its owner, while the
// refund window is still open.
func (s *Service) RequestRefund(ctx context.Context, id, ownerID string) (domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.OwnerID != ownerID {
		return domain.Order{}, apperr.NotFound("order")
	}
	if o.Status != domain.StatusReceived {
		return domain.Order{}, apperr.Conflict("only received orders can be returned")
	}
	if !o.RefundOpen(s.now()) {
		return domain.Order{}, apperr.Conflict("refund window has closed")
	}

	o.Status = domain.StatusReturned
	o.History = append(o.History, domain.StatusEntry{
		Status:    domain.StatusReturned,
		ChangedBy: ownerID,
		Reason:    "Refund requested",
		At:        s.now(),
	})

	return s.orders.Update(ctx, o)
}
