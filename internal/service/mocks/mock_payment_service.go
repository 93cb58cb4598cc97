package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/service"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Checkout(ctx context.Context, req service.PaymentRequest) (*service.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}

func (m *MockPaymentService) Process(ctx context.Context, req service.PaymentRequest, webhookSecret string) (*service.ProcessResult, error) {
	args := m.Called(ctx, req, webhookSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessResult), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, evt service.WebhookEvent) (*service.WebhookResult, error) {
	args := m.Called(ctx, evt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WebhookResult), args.Error(1)
}
