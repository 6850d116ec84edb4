package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, owner_id, total_amount, currency, status,
	shipping_address, payment_method, is_refund_eligible, refund_deadline,
	created_at, updated_at`

func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO orders (owner_id, total_amount, currency, status,
			shipping_address, payment_method, is_refund_eligible, refund_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+orderColumns,
		o.OwnerID, o.Total.Amount, o.Total.Currency, string(o.Status),
		o.ShippingAddress, string(o.PaymentMethod), o.IsRefundEligible, o.RefundDeadline,
	)
	created, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}

	for _, item := range o.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, price_amount, currency)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			created.ID, item.ProductID, item.Name, item.Quantity,
			item.PriceAtPurchase.Amount, item.PriceAtPurchase.Currency,
		)
		if err != nil {
			return domain.Order{}, err
		}
	}
	for _, entry := range o.History {
		if err := insertHistory(ctx, tx, created.ID, entry); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}

	created.Items = o.Items
	created.History = o.History
	return created, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperr.NotFound("order")
	}
	if err != nil {
		return domain.Order{}, err
	}
	return r.load(ctx, o)
}

func (r *OrderRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		loaded, err := r.load(ctx, out[i])
		if err != nil {
			return nil, err
		}
		out[i] = loaded
	}
	return out, nil
}

// Update persists the current status and appends any history entries past the
// stored count. Existing history rows are never touched.
func (r *OrderRepo) Update(ctx context.Context, o domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, is_refund_eligible = $3, updated_at = now()
		WHERE id = $1`,
		o.ID, string(o.Status), o.IsRefundEligible)
	if err != nil {
		return domain.Order{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, err
	}
	if n == 0 {
		return domain.Order{}, apperr.NotFound("order")
	}

	var stored int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM order_status_history WHERE order_id = $1`, o.ID).
		Scan(&stored); err != nil {
		return domain.Order{}, err
	}
	for _, entry := range o.History[stored:] {
		if err := insertHistory(ctx, tx, o.ID, entry); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) load(ctx context.Context, o domain.Order) (domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, price_amount, currency
		FROM order_items WHERE order_id = $1`, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity,
			&item.PriceAtPurchase.Amount, &item.PriceAtPurchase.Currency)
		if err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, err
	}

	hrows, err := r.db.QueryContext(ctx, `
		SELECT status, changed_by, coalesce(reason, ''), at
		FROM order_status_history WHERE order_id = $1 ORDER BY at, id`, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	defer hrows.Close()

	for hrows.Next() {
		var (
			entry  domain.StatusEntry
			status string
		)
		if err := hrows.Scan(&status, &entry.ChangedBy, &entry.Reason, &entry.At); err != nil {
			return domain.Order{}, err
		}
		entry.Status = domain.Status(status)
		o.History = append(o.History, entry)
	}
	return o, hrows.Err()
}

func insertHistory(ctx context.Context, tx *sql.Tx, orderID string, e domain.StatusEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_by, reason, at)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, string(e.Status), e.ChangedBy, e.Reason, e.At)
	return err
}

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		o      domain.Order
		status string
		method string
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.Total.Amount, &o.Total.Currency, &status,
		&o.ShippingAddress, &method, &o.IsRefundEligible, &o.RefundDeadline,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.Status(status)
	o.PaymentMethod = domain.PaymentMethod(method)
	return o, nil
}

var _ app.OrderRepo = (*OrderRepo)(nil)
