package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, description, price_amount, currency, stock,
	category_id, photos, is_active, is_deleted, created_at, updated_at`

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	photos, err := json.Marshal(p.Photos)
	if err != nil {
		return domain.Product{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price_amount, currency, stock,
			category_id, photos, is_active, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price.Amount, p.Price.Currency, p.Stock,
		p.CategoryID, photos, p.IsActive, p.IsDeleted,
	)
	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.NotFound("product")
	}
	return p, err
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	photos, err := json.Marshal(p.Photos)
	if err != nil {
		return domain.Product{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price_amount = $4, currency = $5,
			stock = $6, category_id = $7, photos = $8, is_active = $9,
			is_deleted = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price.Amount, p.Price.Currency,
		p.Stock, p.CategoryID, photos, p.IsActive, p.IsDeleted,
	)

	updated, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.NotFound("product")
	}
	return updated, err
}

func (r *ProductRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Product, int, error) {
	where, args := buildWhere(q)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	args = append(args, q.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderBy(q.Sort), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Reserve decrements stock only when enough units remain; the conditional
// UPDATE makes the check-and-decrement a single atomic statement per row.
func (r *ProductRepo) Reserve(ctx context.Context, id string, qty int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var name string
		err := r.db.QueryRowContext(ctx,
			`SELECT name FROM products WHERE id = $1`, id).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("product")
		}
		if err != nil {
			return err
		}
		return apperr.InsufficientStock(name)
	}
	return nil
}

func (r *ProductRepo) Release(ctx context.Context, id string, qty int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1`, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func buildWhere(q domain.ListQuery) (string, []any) {
	conds := []string{"is_active", "NOT is_deleted"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Search != "" {
		ph := arg("%" + q.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", ph, ph))
	}
	if len(q.CategoryIDs) > 0 {
		phs := make([]string, len(q.CategoryIDs))
		for i, id := range q.CategoryIDs {
			phs[i] = arg(id)
		}
		conds = append(conds, fmt.Sprintf("category_id IN (%s)", strings.Join(phs, ", ")))
	}
	if q.HasMin {
		conds = append(conds, "price_amount >= "+arg(q.MinPrice))
	}
	if q.HasMax {
		conds = append(conds, "price_amount <= "+arg(q.MaxPrice))
	}
	if q.InStock != nil {
		if *q.InStock {
			conds = append(conds, "stock > 0")
		} else {
			conds = append(conds, "stock = 0")
		}
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(key domain.SortKey) string {
	switch key {
	case domain.SortPriceAsc:
		return "price_amount ASC"
	case domain.SortPriceDesc:
		return "price_amount DESC"
	case domain.SortNewest:
		return "created_at DESC"
	case domain.SortOldest:
		return "created_at ASC"
	default:
		return "lower(name) ASC"
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var (
		p      domain.Product
		photos []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price.Amount, &p.Price.Currency,
		&p.Stock, &p.CategoryID, &photos, &p.IsActive, &p.IsDeleted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &p.Photos); err != nil {
			return domain.Product{}, err
		}
	}
	return p, nil
}

var _ app.ProductRepo = (*ProductRepo)(nil)
