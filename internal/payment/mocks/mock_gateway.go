package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/payment"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Preference), args.Error(1)
}

func (m *MockGateway) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}
