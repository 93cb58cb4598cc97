package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/guardian"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context) (*guardian.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*guardian.SweepResult), args.Error(1)
}
