package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blacklink/internal/model"
	"blacklink/internal/plan"
	"blacklink/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTitleRequired   = errors.New("product title is required")
)

// PlanLimitError is returned when an owner's plan product cap is hit. It
// carries the plan and cap so handlers can phrase the refusal.
type PlanLimitError struct {
	Plan  string
	Limit int
}

func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("plan %s allows at most %d products", e.Plan, e.Limit)
}

// ProductService defines the use cases around showcase products.
type ProductService interface {
	// CreateForUser adds a product built from in over the creation defaults
	// (active, default CTA label), enforcing the owner plan's product cap.
	CreateForUser(ctx context.Context, username string, in model.ProductUpdate) (*model.Product, error)

	// ListForUser returns every product of one user, newest first.
	ListForUser(ctx context.Context, username string) ([]model.Product, error)

	// Get returns a product by ID.
	Get(ctx context.Context, id int64) (*model.Product, error)

	// Update applies a partial update and returns the stored product.
	Update(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error)

	// Delete removes a product by ID.
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewProductService constructs a new ProductService.
func NewProductService(users repository.UserRepository, products repository.ProductRepository) ProductService {
	return &productService{users: users, products: products}
}

func (s *productService) CreateForUser(ctx context.Context, username string, in model.ProductUpdate) (*model.Product, error) {
	p := &model.Product{IsActive: true, CTALabel: model.DefaultProductCTALabel}
	in.Apply(p)
	if strings.TrimSpace(p.Title) == "" {
		return nil, ErrTitleRequired
	}

	owner, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	current := plan.Get(owner.Plan)
	count, err := s.products.CountByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if !current.AllowsMoreProducts(count) {
		return nil, &PlanLimitError{Plan: current.ID, Limit: *current.Limits.MaxProducts}
	}

	p.OwnerID = owner.ID
	return s.products.Create(ctx, p)
}

func (s *productService) ListForUser(ctx context.Context, username string) ([]model.Product, error) {
	owner, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	return s.products.ListByOwner(ctx, owner.ID)
}

func (s *productService) Get(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(p)
	return s.products.Update(ctx, p)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}
