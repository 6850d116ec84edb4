package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

// CartItem keeps the unit price captured when the item first entered the
// cart. Quantity bumps do not refresh it.
type CartItem struct {
	ProductID  string
	Quantity   int64
	PriceAtAdd Money
	AddedAt    time.Time
}

// Cart is owned by exactly one principal; the owner id is the lookup key and
// at most one cart exists per principal.
type Cart struct {
	ID        string
	OwnerID   string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) Find(productID string) (int, bool) {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

// LineView joins a stored line with live product state.
type LineView struct {
	ProductID  string
	Name       string
	Quantity   int64
	PriceAtAdd Money
	LivePrice  Money
	LineTotal  Money
}

// PriceDrift surfaces a line whose live price no longer matches the captured
// price-at-add. Both values are reported; neither is silently preferred.
type PriceDrift struct {
	ProductID  string
	Name       string
	PriceAtAdd Money
	LivePrice  Money
}

// CartView is the read model: lines whose product vanished, went inactive or
// lost stock are dropped, and the total is recomputed from live prices.
type CartView struct {
	OwnerID      string
	Items        []LineView
	Total        Money
	PriceChanged []PriceDrift
}
