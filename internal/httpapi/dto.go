package httpapi

import (
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
)

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type productJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       moneyJSON `json:"price"`
	Stock       int64     `json:"stock"`
	CategoryID  string    `json:"categoryId"`
	Photos      []string  `json:"photos,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductJSON(p catalogdomain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       moneyJSON{Amount: p.Price.Amount, Currency: p.Price.Currency},
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Photos:      p.Photos,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type productPageJSON struct {
	Products   []productJSON `json:"products"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

func toProductPageJSON(page catalogdomain.ProductPage) productPageJSON {
	products := make([]productJSON, 0, len(page.Products))
	for _, p := range page.Products {
		products = append(products, toProductJSON(p))
	}
	return productPageJSON{
		Products:   products,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
}

type categoryJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Gender      string    `json:"gender"`
	ParentID    string    `json:"parentId,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCategoryJSON(c catalogdomain.Category) categoryJSON {
	return categoryJSON{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Gender:      string(c.Gender),
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type cartLineJSON struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	Quantity   int64     `json:"quantity"`
	PriceAtAdd moneyJSON `json:"priceAtAdd"`
	LivePrice  moneyJSON `json:"livePrice"`
	LineTotal  moneyJSON `json:"lineTotal"`
}

type priceDriftJSON struct {
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	PriceAtAdd moneyJSON `json:"priceAtAdd"`
	LivePrice  moneyJSON `json:"livePrice"`
}

type cartViewJSON struct {
	Items        []cartLineJSON   `json:"items"`
	Total        moneyJSON        `json:"total"`
	PriceChanged []priceDriftJSON `json:"priceChangedItems,omitempty"`
}

func toCartViewJSON(v cartdomain.CartView) cartViewJSON {
	out := cartViewJSON{
		Items: make([]cartLineJSON, 0, len(v.Items)),
		Total: moneyJSON{Amount: v.Total.Amount, Currency: v.Total.Currency},
	}
	for _, it := range v.Items {
		out.Items = append(out.Items, cartLineJSON{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			PriceAtAdd: moneyJSON{Amount: it.PriceAtAdd.Amount, Currency: it.PriceAtAdd.Currency},
			LivePrice:  moneyJSON{Amount: it.LivePrice.Amount, Currency: it.LivePrice.Currency},
			LineTotal:  moneyJSON{Amount: it.LineTotal.Amount, Currency: it.LineTotal.Currency},
		})
	}
	for _, d := range v.PriceChanged {
		out.PriceChanged = append(out.PriceChanged, priceDriftJSON{
			ProductID:  d.ProductID,
			Name:       d.Name,
			PriceAtAdd: moneyJSON{Amount: d.PriceAtAdd.Amount, Currency: d.PriceAtAdd.Currency},
			LivePrice:  moneyJSON{Amount: d.LivePrice.Amount, Currency: d.LivePrice.Currency},
		})
	}
	return out
}

type orderItemJSON struct {
	ProductID       string    `json:"productId"`
	Name            string    `json:"name"`
	Quantity        int64     `json:"quantity"`
	PriceAtPurchase moneyJSON `json:"priceAtPurchase"`
}

type statusEntryJSON struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

type orderJSON struct {
	ID               string            `json:"id"`
	Items            []orderItemJSON   `json:"items"`
	Total            moneyJSON         `json:"total"`
	Status           string            `json:"status"`
	StatusHistory    []statusEntryJSON `json:"statusHistory"`
	ShippingAddress  string            `json:"shippingAddress"`
	PaymentMethod    string            `json:"paymentMethod"`
	IsRefundEligible bool              `json:"isRefundEligible"`
	RefundDeadline   time.Time         `json:"refundDeadline"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func toOrderJSON(o orderdomain.Order) orderJSON {
	out := orderJSON{
		ID:               o.ID,
		Items:            make([]orderItemJSON, 0, len(o.Items)),
		Total:            moneyJSON{Amount: o.Total.Amount, Currency: o.Total.Currency},
		Status:           string(o.Status),
		StatusHistory:    make([]statusEntryJSON, 0, len(o.History)),
		ShippingAddress:  o.ShippingAddress,
		PaymentMethod:    string(o.PaymentMethod),
		IsRefundEligible: o.IsRefundEligible,
		RefundDeadline:   o.RefundDeadline,
		CreatedAt:        o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemJSON{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			PriceAtPurchase: moneyJSON{Amount: it.PriceAtPurchase.Amount, Currency: it.PriceAtPurchase.Currency},
		})
	}
	for _, e := range o.History {
		out.StatusHistory = append(out.StatusHistory, statusEntryJSON{
			Status:    string(e.Status),
			ChangedBy: e.ChangedBy,
			Reason:    e.Reason,
			At:        e.At,
		})
	}
	return out
}
