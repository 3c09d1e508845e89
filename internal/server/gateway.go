// ABOUTME: Access gateway running the per-request authentication state machine
// ABOUTME: Extracts bearer tokens, resolves identities by declared role, gates handlers

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/typicallhavok/task-manager/internal/auth"
	"github.com/typicallhavok/task-manager/internal/directory"
	"github.com/typicallhavok/task-manager/internal/store"
)

// Gateway errors
var (
	ErrMissingToken     = errors.New("missing token")
	ErrIdentityNotFound = errors.New("identity not found")
)

// Gateway authenticates requests and resolves the caller's identity.
// Each request walks the same states: unauthenticated, token verified,
// identity resolved, authorized. Any failure is terminal for the request.
type Gateway struct {
	tokens    auth.TokenVerifier
	directory *directory.Directory
	logger    *slog.Logger
}

// NewGateway creates a Gateway
func NewGateway(tokens auth.TokenVerifier, dir *directory.Directory) *Gateway {
	return &Gateway{
		tokens:    tokens,
		directory: dir,
		logger:    slog.Default().With("component", "gateway"),
	}
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns ErrMissingToken when no usable token is present.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ErrMissingToken
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Authenticate verifies the bearer token and resolves the username
// against the namespace selected by role. A real identity declared
// under the wrong role resolves to ErrIdentityNotFound.
func (g *Gateway) Authenticate(ctx context.Context, authHeader string, role store.Role) (*auth.AuthContext, error) {
	token, err := extractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	username, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	identity, err := g.directory.FindIdentity(ctx, username, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return &auth.AuthContext{
		Username:     identity.Username,
		Role:         identity.Role,
		Gender:       identity.Gender,
		Organisation: identity.Organisation,
	}, nil
}

// requestRole reads the caller-declared role header, defaulting to the
// user namespace.
func requestRole(r *http.Request) store.Role {
	if store.Role(r.Header.Get("role")) == store.RoleAdmin {
		return store.RoleAdmin
	}
	return store.RoleUser
}

// Require wraps a handler with bearer-token authentication for the
// given namespace. Missing or invalid tokens are 401; identities that
// exist only in the other namespace are 404. On success the handler
// sees an AuthContext on the request context.
func (g *Gateway) Require(role store.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"), role)
		if err != nil {
			switch {
			case errors.Is(err, ErrMissingToken):
				http.Error(w, `{"message":"No token provided"}`, http.StatusUnauthorized)
			case errors.Is(err, ErrIdentityNotFound):
				http.Error(w, `{"message":"Identity not found"}`, http.StatusNotFound)
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrMissingClaim):
				http.Error(w, `{"message":"Invalid token"}`, http.StatusUnauthorized)
			default:
				g.logger.Error("authentication failed", "error", err)
				http.Error(w, `{"message":"Server error"}`, http.StatusInternalServerError)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), authCtx)))
	}
}
