package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"blacklink/internal/model"
	"blacklink/internal/plan"
	"blacklink/internal/repository"
)

var (
	ErrUserNil           = errors.New("user is nil")
	ErrUsernameRequired  = errors.New("username is required")
	ErrUserNotFound      = errors.New("blacklink user not found")
	ErrUsernameTaken     = errors.New("username already in use")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrAlreadyOnPlan     = errors.New("user is already on this plan")
	ErrUpgradeNotAllowed = errors.New("user is already on the top plan")
)

// UserProfile is a user plus their products, the shape served by the profile
// endpoints.
type UserProfile struct {
	model.User
	Products []model.Product `json:"products"`
}

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []UserProfile `json:"data"`
	Total int           `json:"total"`
}

// UserService defines the use cases around profile owners.
type UserService interface {
	// Register creates a profile from a full payload. The username is
	// normalized and must be free; unknown plan names become free.
	Register(ctx context.Context, u *model.User) (*UserProfile, error)

	// GetProfile returns a user with products, reconciling the plan
	// lifecycle first and persisting any downgrade it causes.
	GetProfile(ctx context.Context, username string) (*UserProfile, error)

	// List returns users with their products, optionally filtered by plan.
	List(ctx context.Context, planID string, limit, offset int) (*UserListResult, error)

	// UpdateProfile applies a partial update and returns the stored profile.
	UpdateProfile(ctx context.Context, username string, upd model.UserUpdate) (*UserProfile, error)

	// Delete removes a user; their products go with them at the schema level.
	Delete(ctx context.Context, username string) error

	// UpgradePlan moves a user straight onto a paid plan with no expiry, the
	// payment-independent path. Don owners cannot change plans here.
	UpgradePlan(ctx context.Context, username, planID string) (*UserProfile, error)

	// CreateAdmin provisions a user from just handle, contact email and plan.
	CreateAdmin(ctx context.Context, username, email, planID string) (*model.User, error)
}

type userService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, products repository.ProductRepository) UserService {
	return &userService{users: users, products: products}
}

func (s *userService) profile(ctx context.Context, u *model.User) (*UserProfile, error) {
	products, err := s.products.ListByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return &UserProfile{User: *u, Products: products}, nil
}

func (s *userService) Register(ctx context.Context, u *model.User) (*UserProfile, error) {
	if u == nil {
		return nil, ErrUserNil
	}
	username := normalizeUsername(u.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	u.Username = username
	u.Plan = plan.Normalize(u.Plan)
	if u.PlanStatus == "" {
		u.PlanStatus = plan.StatusActive
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: *created, Products: []model.Product{}}, nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*UserProfile, error) {
	u, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *userService) List(ctx context.Context, planID string, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var f repository.UserFilter
	if planID != "" {
		f.Plan = plan.Normalize(planID)
	}

	res, err := s.users.List(ctx, f, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	out := &UserListResult{Items: make([]UserProfile, 0, len(res.Items)), Total: res.Total}
	for i := range res.Items {
		p, err := s.profile(ctx, &res.Items[i])
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *p)
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, username string, upd model.UserUpdate) (*UserProfile, error) {
	u, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	if upd.Plan != nil {
		normalized := plan.Normalize(*upd.Plan)
		upd.Plan = &normalized
	}
	upd.Apply(u)

	stored, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, stored)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	u, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, u.ID)
}

func (s *userService) UpgradePlan(ctx context.Context, username, planID string) (*UserProfile, error) {
	requested := plan.Normalize(planID)
	if !plan.Known(planID) || requested == plan.Free {
		return nil, ErrInvalidPlan
	}

	u, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	if u.Plan == plan.Don {
		return nil, ErrUpgradeNotAllowed
	}
	if u.Plan == requested {
		return nil, ErrAlreadyOnPlan
	}

	now := time.Now().UTC()
	u.Plan = requested
	u.PlanStatus = plan.StatusActive
	u.PlanStartedAt = &now
	u.PlanExpiresAt = nil
	u.LastPaidPlan = requested
	u.LastPaidExpiresAt = nil

	stored, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, stored)
}

func (s *userService) CreateAdmin(ctx context.Context, username, email, planID string) (*model.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if planID == "" {
		planID = plan.Free
	}
	if !plan.Known(planID) {
		return nil, ErrInvalidPlan
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return s.users.Create(ctx, &model.User{
		Username:   username,
		Email:      email,
		Plan:       plan.Normalize(planID),
		PlanStatus: plan.StatusActive,
	})
}
