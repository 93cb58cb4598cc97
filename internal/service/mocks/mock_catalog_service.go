package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/model"
	"blacklink/internal/service"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Storefront(ctx context.Context, username string, q service.StorefrontQuery) (*service.StorefrontView, error) {
	args := m.Called(ctx, username, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StorefrontView), args.Error(1)
}

func (m *MockCatalogService) ProductDetail(ctx context.Context, username string, productID int64) (*service.ProductDetailView, error) {
	args := m.Called(ctx, username, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductDetailView), args.Error(1)
}

func (m *MockCatalogService) PublicProducts(ctx context.Context, username string) ([]model.Product, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) ResolveOut(ctx context.Context, productID int64) (string, error) {
	args := m.Called(ctx, productID)
	return args.String(0), args.Error(1)
}
