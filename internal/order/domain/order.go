package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

type PaymentMethod string

const (
	PayOnReceive PaymentMethod = "on_receive"
	PayOnline    PaymentMethod = "online"
)

// ParsePaymentMethod validates against the closed set; payment is recorded,
// never processed.
func ParsePaymentMethod(v string) (PaymentMethod, bool) {
	switch PaymentMethod(v) {
	case PayOnReceive, PayOnline:
		return PaymentMethod(v), true
	default:
		return "", false
	}
}

// OrderItem is immutable once the order exists; PriceAtPurchase is the unit
// price the moment checkout ran.
type OrderItem struct {
	ProductID       string
	Name            string
	Quantity        int64
	PriceAtPurchase Money
}

// StatusEntry records one transition. History is append-only: entries are
// never rewritten or removed.
type StatusEntry struct {
	Status    Status
	ChangedBy string
	Reason    string
	At        time.Time
}

type Order struct {
	ID               string
	OwnerID          string
	Items            []OrderItem
	Total            Money
	Status           Status
	History          []StatusEntry
	ShippingAddress  string
	PaymentMethod    PaymentMethod
	IsRefundEligible bool
	RefundDeadline   time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RefundOpen reports whether a refund request would still be accepted.
func (o Order) RefundOpen(now time.Time) bool {
	return o.IsRefundEligible && now.Before(o.RefundDeadline)
}
