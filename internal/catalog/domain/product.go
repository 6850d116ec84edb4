package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

type Product struct {
	ID          string
	Name        string
	Description string
	Price       Money
	Stock       int64
	CategoryID  string
	Photos      []string
	IsActive    bool
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Visible reports whether the product may appear in customer-facing reads.
func (p Product) Visible() bool {
	return p.IsActive && !p.IsDeleted
}

type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
)

// ParseSortKey falls back to name ascending for unrecognized values.
func ParseSortKey(v string) SortKey {
	switch SortKey(v) {
	case SortPriceAsc, SortPriceDesc, SortNewest, SortOldest, SortName:
		return SortKey(v)
	default:
		return SortName
	}
}

// ListQuery describes one product listing request after parsing. CategoryIDs
// holds the requested category expanded to all of its descendants; a gender
// filter arrives here already resolved to category ids.
type ListQuery struct {
	Search      string
	CategoryIDs []string
	MinPrice    int64
	MaxPrice    int64
	HasMin      bool
	HasMax      bool
	InStock     *bool
	Sort        SortKey
	Page        int
	Limit       int
}

type ProductPage struct {
	Products   []Product
	Total      int
	Page       int
	Limit      int
	TotalPages int
}
