package guardian

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blacklink/internal/model"
	repoMocks "blacklink/internal/repository/mocks"
)

type stubChecker struct {
	dead map[string]bool
}

func (s *stubChecker) Alive(_ context.Context, rawURL string) bool {
	return !s.dead[rawURL]
}

func TestGuardianSweep(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		dead            map[string]bool
		setupMocks      func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository)
		wantChecked     int
		wantDeactivated int
		wantErr         bool
	}{
		{
			name: "deactivates dead links of guarded plans only",
			dead: map[string]bool{"https://mercadolivre.com.br/dead": true},
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mProducts.On("ListActive", ctx).Return([]model.Product{
					{ID: 1, OwnerID: 10, Title: "Dead offer", URL: "https://mercadolivre.com.br/dead"},
					{ID: 2, OwnerID: 10, Title: "Live offer", URL: "https://mercadolivre.com.br/alive"},
					{ID: 3, OwnerID: 20, Title: "Free owner offer", URL: "https://mercadolivre.com.br/dead"},
				}, nil)
				// one lookup per owner, cached for the rest of the sweep
				mUsers.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, Plan: "pro"}, nil).Once()
				mUsers.On("FindByID", ctx, int64(20)).Return(&model.User{ID: 20, Plan: "free"}, nil).Once()
				mProducts.On("Deactivate", ctx, int64(1)).Return(nil)
			},
			wantChecked:     2,
			wantDeactivated: 1,
		},
		{
			name: "missing owner is skipped",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mProducts.On("ListActive", ctx).Return([]model.Product{
					{ID: 1, OwnerID: 99, URL: "https://mercadolivre.com.br/x"},
				}, nil)
				mUsers.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)
			},
			wantChecked:     0,
			wantDeactivated: 0,
		},
		{
			name: "list error",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mProducts.On("ListActive", ctx).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
		{
			name: "owner lookup error",
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mProducts.On("ListActive", ctx).Return([]model.Product{
					{ID: 1, OwnerID: 10, URL: "https://mercadolivre.com.br/x"},
				}, nil)
				mUsers.On("FindByID", ctx, int64(10)).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
		{
			name: "deactivate error stops the sweep",
			dead: map[string]bool{"https://mercadolivre.com.br/dead": true},
			setupMocks: func(mUsers *repoMocks.MockUserRepository, mProducts *repoMocks.MockProductRepository) {
				mProducts.On("ListActive", ctx).Return([]model.Product{
					{ID: 1, OwnerID: 10, URL: "https://mercadolivre.com.br/dead"},
				}, nil)
				mUsers.On("FindByID", ctx, int64(10)).Return(&model.User{ID: 10, Plan: "don"}, nil)
				mProducts.On("Deactivate", ctx, int64(1)).Return(errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			mProducts := new(repoMocks.MockProductRepository)
			tt.setupMocks(mUsers, mProducts)

			g := New(mUsers, mProducts, &stubChecker{dead: tt.dead}, time.Minute, time.UTC)

			res, err := g.Sweep(ctx)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantChecked, res.Checked)
				assert.Equal(t, tt.wantDeactivated, res.Deactivated)
			}
			mUsers.AssertExpectations(t)
			mProducts.AssertExpectations(t)
		})
	}
}

func TestGuardianRunStopsOnCancel(t *testing.T) {
	mUsers := new(repoMocks.MockUserRepository)
	mProducts := new(repoMocks.MockProductRepository)
	mProducts.On("ListActive", mock.Anything).Return([]model.Product{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		New(mUsers, mProducts, &stubChecker{}, time.Hour, nil).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("guardian did not stop on context cancellation")
	}
}
