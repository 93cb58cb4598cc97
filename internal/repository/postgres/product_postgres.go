package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blacklink/internal/model"
	"blacklink/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

const productColumns = `id, owner_id, title, description, url, image_url,
	source_image_url, price, tag, badge, cta_label,
	is_active, is_featured, created_at`

// orderColumns whitelists ORDER BY targets; anything else falls back to id.
var orderColumns = map[string]string{
	repository.ProductOrderID:    "id",
	repository.ProductOrderTitle: "title",
	repository.ProductOrderBadge: "badge",
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.URL,
		&p.ImageURL,
		&p.SourceImageURL,
		&p.Price,
		&p.Tag,
		&p.Badge,
		&p.CTALabel,
		&p.IsActive,
		&p.IsFeatured,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new product row and returns the stored record.
func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		INSERT INTO blacklink_products (
			owner_id, title, description, url, image_url, source_image_url,
			price, tag, badge, cta_label, is_active, is_featured
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + productColumns
	row := r.db.QueryRowContext(ctx, q,
		p.OwnerID,
		p.Title,
		p.Description,
		p.URL,
		p.ImageURL,
		p.SourceImageURL,
		p.Price,
		p.Tag,
		p.Badge,
		p.CTALabel,
		p.IsActive,
		p.IsFeatured,
	)
	return scanProduct(row)
}

// FindByID fetches a single product by primary key.
func (r *ProductPostgres) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM blacklink_products WHERE id = $1`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns every product of one owner, newest first.
func (r *ProductPostgres) ListByOwner(ctx context.Context, ownerID int64) ([]model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM blacklink_products WHERE owner_id = $1 ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// CountByOwner counts an owner's products regardless of active state.
func (r *ProductPostgres) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM blacklink_products WHERE owner_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Search returns the owner's products matching the filter.
func (r *ProductPostgres) Search(ctx context.Context, f repository.ProductFilter) ([]model.Product, error) {
	q := "SELECT " + productColumns + " FROM blacklink_products WHERE owner_id = $1"
	args := []any{f.OwnerID}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		q += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if f.ActiveOnly {
		q += " AND is_active"
	}
	if f.ExcludeID > 0 {
		args = append(args, f.ExcludeID)
		q += fmt.Sprintf(" AND id <> $%d", len(args))
	}

	col, ok := orderColumns[f.OrderBy]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	q += fmt.Sprintf(" ORDER BY %s %s", col, dir)

	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListActive returns all active products across owners for the guardian sweep.
func (r *ProductPostgres) ListActive(ctx context.Context) ([]model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM blacklink_products WHERE is_active ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Update persists every mutable column of p and returns the stored row.
func (r *ProductPostgres) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		UPDATE blacklink_products SET
			title = $1, description = $2, url = $3, image_url = $4,
			source_image_url = $5, price = $6, tag = $7, badge = $8,
			cta_label = $9, is_active = $10, is_featured = $11
		WHERE id = $12
		RETURNING ` + productColumns
	row := r.db.QueryRowContext(ctx, q,
		p.Title,
		p.Description,
		p.URL,
		p.ImageURL,
		p.SourceImageURL,
		p.Price,
		p.Tag,
		p.Badge,
		p.CTALabel,
		p.IsActive,
		p.IsFeatured,
		p.ID,
	)
	return scanProduct(row)
}

// Deactivate clears is_active and is_featured in one statement.
func (r *ProductPostgres) Deactivate(ctx context.Context, id int64) error {
	const q = `UPDATE blacklink_products SET is_active = FALSE, is_featured = FALSE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Delete removes a product by ID. It does not return an error if the row
// does not exist.
func (r *ProductPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM blacklink_products WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
