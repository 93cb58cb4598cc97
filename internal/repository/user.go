package repository

import (
	"context"

	"blacklink/internal/model"
)

// UserFilter narrows List results. Zero values mean "no filter".
type UserFilter struct {
	Plan string
}

// UserRepository defines data access for profile owners using SQL queries only.
// No business logic here, strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record. Username must already be normalized
	// (lowercase, trimmed). Returns the stored user including DB-assigned
	// fields.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by primary key.
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername returns a user by its unique handle.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// List returns a paginated list of users plus the total row count for
	// the given filter.
	List(ctx context.Context, f UserFilter, pq PageQuery) (*PageResult[model.User], error)

	// Update persists every mutable column of u and returns the stored row.
	Update(ctx context.Context, u *model.User) (*model.User, error)

	// Delete removes a user by ID; products cascade at the schema level.
	// It returns nil if the row did not exist.
	Delete(ctx context.Context, id int64) error
}
