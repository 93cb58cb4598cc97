package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blacklink/internal/model"
	"blacklink/internal/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, u *model.User) (*service.UserProfile, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserProfile), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, username string) (*service.UserProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserProfile), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, planID string, limit, offset int) (*service.UserListResult, error) {
	args := m.Called(ctx, planID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserListResult), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, username string, upd model.UserUpdate) (*service.UserProfile, error) {
	args := m.Called(ctx, username, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserProfile), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserService) UpgradePlan(ctx context.Context, username, planID string) (*service.UserProfile, error) {
	args := m.Called(ctx, username, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserProfile), args.Error(1)
}

func (m *MockUserService) CreateAdmin(ctx context.Context, username, email, planID string) (*model.User, error) {
	args := m.Called(ctx, username, email, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
