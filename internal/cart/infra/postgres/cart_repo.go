package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) Get(ctx context.Context, ownerID string) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, created_at, updated_at
		FROM carts WHERE owner_id = $1`, ownerID).
		Scan(&cart.ID, &cart.OwnerID, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, apperr.NotFound("cart")
	}
	if err != nil {
		return domain.Cart{}, err
	}

	items, err := r.items(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = items
	return cart, nil
}

func (r *CartRepo) GetOrCreate(ctx context.Context, ownerID string) (domain.Cart, error) {
	cart, err := r.Get(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return domain.Cart{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO carts (owner_id) VALUES ($1)`, ownerID)
	if err != nil && !isUniqueViolation(err) {
		// A concurrent request may have created it; re-read either way.
		return domain.Cart{}, err
	}
	return r.Get(ctx, ownerID)
}

// Save replaces the cart's item set in one transaction. A cart has a single
// owning principal, so read-modify-write per request is enough.
func (r *CartRepo) Save(ctx context.Context, cart domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}
	for _, item := range cart.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, price_amount, currency, added_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			cart.ID, item.ProductID, item.Quantity,
			item.PriceAtAdd.Amount, item.PriceAtAdd.Currency, item.AddedAt,
		)
		if err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET updated_at = now() WHERE id = $1`, cart.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *CartRepo) items(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price_amount, currency, added_at
		FROM cart_items WHERE cart_id = $1 ORDER BY added_at`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(&item.ProductID, &item.Quantity,
			&item.PriceAtAdd.Amount, &item.PriceAtAdd.Currency, &item.AddedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

var _ app.CartRepo = (*CartRepo)(nil)
