// Package service implements the use cases behind the HTTP handlers. Services
// speak in domain models, own the business rules (plan limits, plan lifecycle,
// payment flows) and translate repository failures into sentinel errors the
// handlers map onto HTTP statuses.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"blacklink/internal/model"
	"blacklink/internal/plan"
	"blacklink/internal/repository"
)

// normalizeUsername lowercases and trims a public handle. Every lookup and
// write goes through this so stored usernames stay canonical.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// syncedUser loads a user by handle and persists any plan lifecycle change
// detected on read, so an expired pro/don is already downgraded by the time
// any rule looks at it.
func syncedUser(ctx context.Context, users repository.UserRepository, username string) (*model.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	u, err := users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if plan.Sync(u, time.Now()) {
		if u, err = users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// getOrCreateUser returns the user for a handle, creating a bare free profile
// when it does not exist yet. Storefront pages rely on this so any handle is
// immediately servable.
func getOrCreateUser(ctx context.Context, users repository.UserRepository, username string) (*model.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	u, err := users.FindByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return users.Create(ctx, &model.User{
		Username:    username,
		DisplayName: username,
		Bio:         "Loja BlackLink",
		Plan:        plan.Free,
		PlanStatus:  plan.StatusActive,
	})
}
