package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blacklink/internal/mercadolivre"
	"blacklink/internal/model"
	"blacklink/internal/plan"
	"blacklink/internal/repository"
)

var (
	// ErrIngestNotAllowed gates automatic ingestion to the paid plans.
	ErrIngestNotAllowed = errors.New("plan does not allow auto ingest")

	// ErrFeaturedNotAllowed gates featured placement to the paid plans.
	ErrFeaturedNotAllowed = errors.New("plan does not allow featured products")

	ErrURLRequired    = errors.New("url is required")
	ErrUnsupportedURL = errors.New("url is not a mercado livre listing")

	// ErrListingUnreadable means the page was fetched but carried no usable
	// product metadata.
	ErrListingUnreadable = errors.New("could not extract listing data")
)

// IngestRequest asks for one Mercado Livre listing to be turned into a
// product on the user's page.
type IngestRequest struct {
	Username string `json:"username"`
	URL      string `json:"url"`
	Featured bool   `json:"featured"`
}

// IngestService imports Mercado Livre listings as products, enforcing the
// per-plan ingest, featured and product-count gates.
type IngestService interface {
	IngestProduct(ctx context.Context, req IngestRequest) (*model.Product, error)
}

type ingestService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	fetcher  mercadolivre.Fetcher
}

// NewIngestService constructs a new IngestService.
func NewIngestService(users repository.UserRepository, products repository.ProductRepository, fetcher mercadolivre.Fetcher) IngestService {
	return &ingestService{users: users, products: products, fetcher: fetcher}
}

func (s *ingestService) IngestProduct(ctx context.Context, req IngestRequest) (*model.Product, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, ErrURLRequired
	}
	if !mercadolivre.IsListingURL(rawURL) {
		return nil, ErrUnsupportedURL
	}

	owner, err := syncedUser(ctx, s.users, req.Username)
	if err != nil {
		return nil, err
	}

	current := plan.Get(owner.Plan)
	if !current.Limits.AutoIngest {
		return nil, ErrIngestNotAllowed
	}
	if req.Featured && !current.Limits.FeaturedAllowed {
		return nil, ErrFeaturedNotAllowed
	}

	count, err := s.products.CountByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if !current.AllowsMoreProducts(count) {
		return nil, &PlanLimitError{Plan: current.ID, Limit: *current.Limits.MaxProducts}
	}

	listing, err := s.fetcher.FetchListing(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", rawURL, err)
	}
	if listing.Title == "" {
		return nil, ErrListingUnreadable
	}

	// The scraped price doubles as the badge so the storefront picks it up.
	p := &model.Product{
		OwnerID:        owner.ID,
		Title:          listing.Title,
		URL:            rawURL,
		SourceImageURL: listing.ImageURL,
		Price:          listing.Price,
		Badge:          listing.Price,
		CTALabel:       model.DefaultProductCTALabel,
		IsActive:       true,
		IsFeatured:     req.Featured,
	}
	return s.products.Create(ctx, p)
}
