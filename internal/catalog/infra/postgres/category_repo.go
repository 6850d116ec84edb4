package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categoryColumns = `id, name, description, gender, parent_id, is_active,
	is_deleted, created_at, updated_at`

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description, gender, parent_id, is_active, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Description, string(c.Gender), nullable(c.ParentID), c.IsActive, c.IsDeleted,
	)
	return scanCategory(row)
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, apperr.NotFound("category")
	}
	return c, err
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $2, description = $3, gender = $4, parent_id = $5,
			is_active = $6, is_deleted = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		c.ID, c.Name, c.Description, string(c.Gender), nullable(c.ParentID),
		c.IsActive, c.IsDeleted,
	)

	updated, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, apperr.NotFound("category")
	}
	return updated, err
}

func (r *CategoryRepo) List(ctx context.Context, f app.CategoryFilter) ([]domain.Category, error) {
	conds := []string{"NOT is_deleted"}
	var args []any

	if !f.IncludeInactive {
		conds = append(conds, "is_active")
	}
	if f.Gender != "" {
		args = append(args, string(f.Gender))
		conds = append(conds, "gender = $1")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE `+
			strings.Join(conds, " AND ")+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCategories(rows)
}

func (r *CategoryRepo) Children(ctx context.Context, parentID string) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCategories(rows)
}

func collectCategories(rows *sql.Rows) ([]domain.Category, error) {
	var out []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (domain.Category, error) {
	var (
		c      domain.Category
		gender string
		parent sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &gender, &parent,
		&c.IsActive, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Category{}, err
	}
	c.Gender = domain.Gender(gender)
	c.ParentID = parent.String
	return c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ app.CategoryRepo = (*CategoryRepo)(nil)
