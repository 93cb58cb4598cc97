package repository

import (
	"context"

	"blacklink/internal/model"
)

// Product ordering columns accepted by ProductFilter.OrderBy.
const (
	ProductOrderID    = "id"
	ProductOrderTitle = "title"
	ProductOrderBadge = "badge"
)

// ProductFilter narrows Search results. OwnerID is required; the rest are
// optional. ExcludeID drops one product from the result, used when listing
// "other offers" next to a detail view.
type ProductFilter struct {
	OwnerID    int64
	Query      string
	OrderBy    string
	Descending bool
	ActiveOnly bool
	ExcludeID  int64
	Limit      int
}

// ProductRepository defines data access for showcase products.
type ProductRepository interface {
	// Create inserts a new product row and returns the stored record.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// FindByID returns a product by primary key.
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// ListByOwner returns every product of one owner, newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Product, error)

	// CountByOwner returns how many products an owner currently has,
	// regardless of active state. Plan limits are enforced on this number.
	CountByOwner(ctx context.Context, ownerID int64) (int, error)

	// Search returns the owner's products matching the filter.
	Search(ctx context.Context, f ProductFilter) ([]model.Product, error)

	// ListActive returns all active products across owners, for the link
	// guardian sweep.
	ListActive(ctx context.Context) ([]model.Product, error)

	// Update persists every mutable column of p and returns the stored row.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)

	// Deactivate clears is_active and is_featured in one statement, used by
	// the link guardian when a target URL is gone.
	Deactivate(ctx context.Context, id int64) error

	// Delete removes a product by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id int64) error
}
