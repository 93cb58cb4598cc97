package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/mercadolivre"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchListing(ctx context.Context, rawURL string) (*mercadolivre.Listing, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadolivre.Listing), args.Error(1)
}
