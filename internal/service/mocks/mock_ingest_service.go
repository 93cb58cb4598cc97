package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/model"
	"blacklink/internal/service"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) IngestProduct(ctx context.Context, req service.IngestRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
