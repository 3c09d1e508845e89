// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating auth info via context

package auth

import (
	"context"

	"github.com/typicallhavok/task-manager/internal/store"
)

// AuthContext holds the authenticated identity extracted from a request.
// Populated by the access gateway once the bearer token is verified and
// the identity resolved against the declared role's namespace.
type AuthContext struct {
	Username     string
	Role         store.Role // "users" or "admins"
	Gender       string
	Organisation string // empty for users outside any organisation
}

// IsAdmin returns true if the caller authenticated in the admin namespace
func (a *AuthContext) IsAdmin() bool {
	return a.Role == store.RoleAdmin
}

// authContextKey is the key type for storing AuthContext in context.Context
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the AuthContext from the context, returning nil if not present
func FromContext(ctx context.Context) *AuthContext {
	val := ctx.Value(authContextKey{})
	if val == nil {
		return nil
	}
	auth, ok := val.(*AuthContext)
	if !ok {
		return nil
	}
	return auth
}
