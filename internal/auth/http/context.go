// Package http provides HTTP handlers and middleware for authentication.
package http

import (
	"context"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
)

// userKey is a context key type for storing authenticated user snapshots.
type userKey struct{}

// WithUser stores an authenticated user snapshot in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithUser(ctx context.Context, user *authDomain.UserSnapshot) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves an authenticated user snapshot from the context.
// Returns (user, true) if a user is present, or (nil, false) if no user was set.
func GetUser(ctx context.Context) (*authDomain.UserSnapshot, bool) {
	user, ok := ctx.Value(userKey{}).(*authDomain.UserSnapshot)
	return user, ok
}
