// Package auth provides authentication context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userContextKey is the key used to store the verified user in context.
	userContextKey contextKey = "user"

	// sessionContextKey is the key used to store the request's session store.
	sessionContextKey contextKey = "session"
)

// GetUser retrieves the verified user from the context.
//
// Returns nil if no user is authenticated.
//
// Usage:
//
//	user := auth.GetUser(r.Context())
//	if user == nil {
//	    // Handle unauthenticated request
//	}
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserFromRequest retrieves the verified user from the request context.
//
// This is a convenience wrapper around GetUser that takes the request directly.
func GetUserFromRequest(r *http.Request) *domain.User {
	return GetUser(r.Context())
}

// SetUser stores a user in the context.
//
// This is typically called by the route guard after the backend has
// confirmed the identity behind the stored token.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetSession retrieves the request's session store from the context.
//
// Returns nil on routes that never passed through the route guard or the
// session hydration middleware.
func GetSession(ctx context.Context) *session.Store {
	store, ok := ctx.Value(sessionContextKey).(*session.Store)
	if !ok {
		return nil
	}
	return store
}

// WithSession stores the request's session store in the context.
func WithSession(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, sessionContextKey, store)
}
