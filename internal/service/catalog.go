package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"blacklink/internal/guardian"
	"blacklink/internal/model"
	"blacklink/internal/repository"
)

// ErrProductUnavailable marks a product whose affiliate link no longer
// resolves, served as a 404 distinct from "never existed".
var ErrProductUnavailable = errors.New("product unavailable")

// fallbackProductImage is shown for products with no image at all.
const fallbackProductImage = "/assets/CosaNostraAI.ico"

// maxRelatedProducts caps the "other offers" strip on a detail view.
const maxRelatedProducts = 3

// priceRe digs a money amount out of a marketing badge such as
// "R$ 1.299,90 à vista". Thousands may be dotted or spaced.
var priceRe = regexp.MustCompile(`(\d{1,3}(?:[.\s]\d{3})*(?:[.,]\d{2})|\d+(?:[.,]\d{2})?)`)

// CatalogItem is the public storefront card of a product.
type CatalogItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link"`
}

// StorefrontQuery carries the storefront search controls. Unknown order
// columns and directions fall back to id descending.
type StorefrontQuery struct {
	Q         string
	OrderBy   string
	Direction string
}

// StorefrontView is the full public store of one handle.
type StorefrontView struct {
	Username  string        `json:"username"`
	Products  []CatalogItem `json:"products"`
	Q         string        `json:"q"`
	OrderBy   string        `json:"order_by"`
	Direction string        `json:"direction"`
}

// ProductDetailView is one live offer plus a strip of other live offers from
// the same owner.
type ProductDetailView struct {
	Username string        `json:"username"`
	Product  CatalogItem   `json:"product"`
	Others   []CatalogItem `json:"others"`
}

// CatalogService serves the public storefront. Visiting any handle creates a
// free profile on the fly; products whose affiliate link died are hidden.
type CatalogService interface {
	// Storefront returns the live products of a handle, filtered and ordered
	// by the query.
	Storefront(ctx context.Context, username string, q StorefrontQuery) (*StorefrontView, error)

	// ProductDetail returns one live product and up to three other live
	// offers from the same owner.
	ProductDetail(ctx context.Context, username string, productID int64) (*ProductDetailView, error)

	// PublicProducts returns the raw product list of a handle, newest first.
	PublicProducts(ctx context.Context, username string) ([]model.Product, error)

	// ResolveOut returns the affiliate redirect target for a product click.
	ResolveOut(ctx context.Context, productID int64) (string, error)
}

type catalogService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	checker  guardian.LinkChecker
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(users repository.UserRepository, products repository.ProductRepository, checker guardian.LinkChecker) CatalogService {
	return &catalogService{users: users, products: products, checker: checker}
}

func (s *catalogService) Storefront(ctx context.Context, username string, q StorefrontQuery) (*StorefrontView, error) {
	user, err := getOrCreateUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	orderBy := normalizeOrder(q.OrderBy)
	direction := "desc"
	if q.Direction == "asc" {
		direction = "asc"
	}

	products, err := s.products.Search(ctx, repository.ProductFilter{
		OwnerID:    user.ID,
		Query:      q.Q,
		OrderBy:    orderBy,
		Descending: direction == "desc",
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(products))
	for _, p := range products {
		if !s.checker.Alive(ctx, p.URL) {
			continue
		}
		items = append(items, catalogItem(p))
	}

	return &StorefrontView{
		Username:  user.Username,
		Products:  items,
		Q:         q.Q,
		OrderBy:   orderBy,
		Direction: direction,
	}, nil
}

func (s *catalogService) ProductDetail(ctx context.Context, username string, productID int64) (*ProductDetailView, error) {
	user, err := getOrCreateUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.OwnerID != user.ID {
		return nil, ErrProductNotFound
	}
	if !p.IsActive || !s.checker.Alive(ctx, p.URL) {
		return nil, ErrProductUnavailable
	}

	others, err := s.products.Search(ctx, repository.ProductFilter{
		OwnerID:    user.ID,
		OrderBy:    repository.ProductOrderID,
		Descending: true,
		ActiveOnly: true,
		ExcludeID:  productID,
	})
	if err != nil {
		return nil, err
	}

	otherItems := make([]CatalogItem, 0, maxRelatedProducts)
	for _, o := range others {
		if !s.checker.Alive(ctx, o.URL) {
			continue
		}
		otherItems = append(otherItems, catalogItem(o))
		if len(otherItems) == maxRelatedProducts {
			break
		}
	}

	return &ProductDetailView{
		Username: user.Username,
		Product:  catalogItem(*p),
		Others:   otherItems,
	}, nil
}

func (s *catalogService) PublicProducts(ctx context.Context, username string) ([]model.Product, error) {
	user, err := getOrCreateUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	return s.products.ListByOwner(ctx, user.ID)
}

func (s *catalogService) ResolveOut(ctx context.Context, productID int64) (string, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrProductUnavailable
		}
		return "", err
	}
	if !p.IsActive || !s.checker.Alive(ctx, p.URL) {
		return "", ErrProductUnavailable
	}
	return p.URL, nil
}

func normalizeOrder(orderBy string) string {
	switch orderBy {
	case repository.ProductOrderTitle, repository.ProductOrderBadge:
		return orderBy
	default:
		return repository.ProductOrderID
	}
}

// priceFromBadge extracts the first money amount from a badge, dropping
// spaces used as thousand separators. Empty when the badge has no number.
func priceFromBadge(badge string) string {
	m := priceRe.FindString(strings.TrimSpace(badge))
	return strings.ReplaceAll(m, " ", "")
}

func catalogItem(p model.Product) CatalogItem {
	img := p.CardImage()
	if img == "" {
		img = fallbackProductImage
	}
	return CatalogItem{
		ID:       p.ID,
		Name:     p.Title,
		Price:    priceFromBadge(p.Badge),
		ImageURL: img,
		Link:     p.URL,
	}
}
