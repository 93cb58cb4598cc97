package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blacklink/internal/model"
	"blacklink/internal/plan"
	"blacklink/internal/repository"
	repoMocks "blacklink/internal/repository/mocks"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      *model.User
		setupMocks func(mUsers *repoMocks.MockUserRepository)
		wantErr    error
		checkRes   func(t *testing.T, p *UserProfile)
	}{
		{
			name:  "happy path normalizes username and plan",
			input: &model.User{Username: "  Capo ", DisplayName: "Capo", Plan: "PRO"},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Username == "capo" && u.Plan == plan.Pro && u.PlanStatus == plan.StatusActive
				})).Return(&model.User{ID: 1, Username: "capo", Plan: plan.Pro, PlanStatus: plan.StatusActive}, nil)
			},
			checkRes: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, "capo", p.Username)
				assert.Equal(t, plan.Pro, p.Plan)
				assert.NotNil(t, p.Products)
				assert.Empty(t, p.Products)
			},
		},
		{
			name:  "unknown plan falls back to free",
			input: &model.User{Username: "capo", Plan: "banana"},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Plan == plan.Free
				})).Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free}, nil)
			},
		},
		{
			name:       "nil user",
			input:      nil,
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {},
			wantErr:    ErrUserNil,
		},
		{
			name:       "empty username",
			input:      &model.User{Username: "   "},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {},
			wantErr:    ErrUsernameRequired,
		},
		{
			name:  "username taken",
			input: &model.User{Username: "capo"},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(&model.User{ID: 1, Username: "capo"}, nil)
			},
			wantErr: ErrUsernameTaken,
		},
		{
			name:  "lookup error",
			input: &model.User{Username: "capo"},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
		{
			name:  "create error",
			input: &model.User{Username: "capo"},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			mProducts := new(repoMocks.MockProductRepository)
			svc := NewUserService(mUsers, mProducts)

			tt.setupMocks(mUsers)

			p, err := svc.Register(ctx, tt.input)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrUserNil) || errors.Is(tt.wantErr, ErrUsernameRequired) || errors.Is(tt.wantErr, ErrUsernameTaken) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, p)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, p)
				if tt.checkRes != nil {
					tt.checkRes(t, p)
				}
			}
			mUsers.AssertExpectations(t)
			mProducts.AssertExpectations(t)
		})
	}
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	past := time.Now().UTC().Add(-48 * time.Hour)

	tests := []struct {
		name       string
		username   string
		setupMocks func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository)
		wantErr    error
		checkRes   func(t *testing.T, p *UserProfile)
	}{
		{
			name:     "happy path with products",
			username: "Capo",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mProducts.On("ListByOwner", ctx, int64(1)).
					Return([]model.Product{{ID: 2, OwnerID: 1, Title: "Oferta"}}, nil)
			},
			checkRes: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, "capo", p.Username)
				assert.Len(t, p.Products, 1)
			},
		},
		{
			name:     "expired paid plan is downgraded and persisted",
			username: "capo",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(&model.User{
					ID: 1, Username: "capo",
					Plan: plan.Pro, PlanStatus: plan.StatusActive, PlanExpiresAt: &past,
				}, nil)
				mUsers.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Plan == plan.Free && u.PlanStatus == plan.StatusExpired &&
						u.PlanExpiresAt == nil && u.LastPaidPlan == plan.Pro
				})).Return(&model.User{
					ID: 1, Username: "capo",
					Plan: plan.Free, PlanStatus: plan.StatusExpired, LastPaidPlan: plan.Pro,
				}, nil)
				mProducts.On("ListByOwner", ctx, int64(1)).Return([]model.Product{}, nil)
			},
			checkRes: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, plan.Free, p.Plan)
				assert.Equal(t, plan.StatusExpired, p.PlanStatus)
			},
		},
		{
			name:       "empty username",
			username:   "  ",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {},
			wantErr:    ErrUsernameRequired,
		},
		{
			name:     "not found",
			username: "ghost",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "ghost").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:     "products error",
			username: "capo",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mProducts.On("ListByOwner", ctx, int64(1)).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			mProducts := new(repoMocks.MockProductRepository)
			svc := NewUserService(mUsers, mProducts)

			tt.setupMocks(mUsers, mProducts)

			p, err := svc.GetProfile(ctx, tt.username)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrUsernameRequired) || errors.Is(tt.wantErr, ErrUserNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, p)
				}
			}
			mUsers.AssertExpectations(t)
			mProducts.AssertExpectations(t)
		})
	}
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("plan filter is normalized and products attached", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mProducts := new(repoMocks.MockProductRepository)
		svc := NewUserService(mUsers, mProducts)

		mUsers.On("List", ctx, repository.UserFilter{Plan: plan.Pro}, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.User]{
				Items: []model.User{{ID: 1, Username: "capo", Plan: plan.Pro}},
				Total: 1,
			}, nil)
		mProducts.On("ListByOwner", ctx, int64(1)).Return([]model.Product{{ID: 5, OwnerID: 1}}, nil)

		res, err := svc.List(ctx, "PRO", 0, -3)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
		assert.Len(t, res.Items[0].Products, 1)
		mUsers.AssertExpectations(t)
		mProducts.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewUserService(mUsers, new(repoMocks.MockProductRepository))

		mUsers.On("List", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))

		res, err := svc.List(ctx, "", 10, 0)

		assert.Error(t, err)
		assert.Nil(t, res)
		mUsers.AssertExpectations(t)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		username   string
		upd        model.UserUpdate
		setupMocks func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository)
		wantErr    error
		checkRes   func(t *testing.T, p *UserProfile)
	}{
		{
			name:     "happy path",
			username: "capo",
			upd:      model.UserUpdate{DisplayName: strPtr("Don Capo"), Bio: strPtr("Ofertas do dia")},
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mUsers.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.DisplayName == "Don Capo" && u.Bio == "Ofertas do dia"
				})).Return(&model.User{ID: 1, Username: "capo", DisplayName: "Don Capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mProducts.On("ListByOwner", ctx, int64(1)).Return([]model.Product{}, nil)
			},
			checkRes: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, "Don Capo", p.DisplayName)
			},
		},
		{
			name:     "plan change is normalized",
			username: "capo",
			upd:      model.UserUpdate{Plan: strPtr("DON")},
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mUsers.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Plan == plan.Don
				})).Return(&model.User{ID: 1, Username: "capo", Plan: plan.Don, PlanStatus: plan.StatusActive}, nil)
				mProducts.On("ListByOwner", ctx, int64(1)).Return([]model.Product{}, nil)
			},
		},
		{
			name:     "not found",
			username: "ghost",
			upd:      model.UserUpdate{},
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "ghost").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:     "update error",
			username: "capo",
			upd:      model.UserUpdate{},
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mUsers.On("Update", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			mProducts := new(repoMocks.MockProductRepository)
			svc := NewUserService(mUsers, mProducts)

			tt.setupMocks(mUsers, mProducts)

			p, err := svc.UpdateProfile(ctx, tt.username, tt.upd)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrUserNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, p)
				}
			}
			mUsers.AssertExpectations(t)
			mProducts.AssertExpectations(t)
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewUserService(mUsers, new(repoMocks.MockProductRepository))

		mUsers.On("FindByUsername", ctx, "capo").
			Return(&model.User{ID: 7, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
		mUsers.On("Delete", ctx, int64(7)).Return(nil)

		assert.NoError(t, svc.Delete(ctx, "capo"))
		mUsers.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewUserService(mUsers, new(repoMocks.MockProductRepository))

		mUsers.On("FindByUsername", ctx, "ghost").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, "ghost"), ErrUserNotFound)
		mUsers.AssertExpectations(t)
	})
}

func TestUserService_UpgradePlan(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		username   string
		planID     string
		setupMocks func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository)
		wantErr    error
		checkRes   func(t *testing.T, p *UserProfile)
	}{
		{
			name:     "free to pro",
			username: "capo",
			planID:   "pro",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Free, PlanStatus: plan.StatusActive}, nil)
				mUsers.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Plan == plan.Pro && u.PlanStatus == plan.StatusActive &&
						u.PlanStartedAt != nil && u.PlanExpiresAt == nil &&
						u.LastPaidPlan == plan.Pro && u.LastPaidExpiresAt == nil
				})).Return(&model.User{ID: 1, Username: "capo", Plan: plan.Pro, PlanStatus: plan.StatusActive}, nil)
				mProducts.On("ListByOwner", ctx, int64(1)).Return([]model.Product{}, nil)
			},
			checkRes: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, plan.Pro, p.Plan)
			},
		},
		{
			name:       "unknown plan",
			username:   "capo",
			planID:     "gold",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {},
			wantErr:    ErrInvalidPlan,
		},
		{
			name:       "free is not a target",
			username:   "capo",
			planID:     "free",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {},
			wantErr:    ErrInvalidPlan,
		},
		{
			name:     "don cannot move",
			username: "capo",
			planID:   "pro",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Don, PlanStatus: plan.StatusActive}, nil)
			},
			wantErr: ErrUpgradeNotAllowed,
		},
		{
			name:     "already on the requested plan",
			username: "capo",
			planID:   "pro",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "capo").
					Return(&model.User{ID: 1, Username: "capo", Plan: plan.Pro, PlanStatus: plan.StatusActive}, nil)
			},
			wantErr: ErrAlreadyOnPlan,
		},
		{
			name:     "not found",
			username: "ghost",
			planID:   "pro",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mUsers.On("FindByUsername", ctx, "ghost").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			mProducts := new(repoMocks.MockProductRepository)
			svc := NewUserService(mUsers, mProducts)

			tt.setupMocks(mUsers, mProducts)

			p, err := svc.UpgradePlan(ctx, tt.username, tt.planID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, p)
				}
			}
			mUsers.AssertExpectations(t)
			mProducts.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateAdmin(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		username   string
		email      string
		planID     string
		setupMocks func(mUsers *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			username: "  Capo ",
			email:    "capo@blacklink.app",
			planID:   "don",
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Username == "capo" && u.Email == "capo@blacklink.app" &&
						u.Plan == plan.Don && u.PlanStatus == plan.StatusActive
				})).Return(&model.User{ID: 1, Username: "capo"}, nil)
			},
		},
		{
			name:     "empty plan defaults to free",
			username: "capo",
			planID:   "",
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Plan == plan.Free
				})).Return(&model.User{ID: 1, Username: "capo"}, nil)
			},
		},
		{
			name:       "empty username",
			username:   "",
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {},
			wantErr:    ErrUsernameRequired,
		},
		{
			name:       "invalid plan",
			username:   "capo",
			planID:     "platinum",
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {},
			wantErr:    ErrInvalidPlan,
		},
		{
			name:     "duplicate",
			username: "capo",
			planID:   "free",
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "capo").Return(&model.User{ID: 1, Username: "capo"}, nil)
			},
			wantErr: ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			svc := NewUserService(mUsers, new(repoMocks.MockProductRepository))

			tt.setupMocks(mUsers)

			u, err := svc.CreateAdmin(ctx, tt.username, tt.email, tt.planID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
			}
			mUsers.AssertExpectations(t)
		})
	}
}
