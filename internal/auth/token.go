// ABOUTME: JWT token issuance and verification for authenticating HTTP requests
// ABOUTME: Uses HS256 signing with a process-wide secret and a fixed 1-hour lifetime

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenLifetime is the fixed validity window of issued tokens. There is
// no refresh mechanism; re-login is the only renewal path.
const TokenLifetime = time.Hour

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (username string, err error)
}

// TokenIssuer defines the interface for token issuance
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// JWTService issues and verifies HS256-signed JWTs carrying the
// identity's username in the "sub" claim.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a token service with the given signing secret
func NewJWTService(secret []byte) *JWTService {
	return &JWTService{secret: secret}
}

// Issue creates a token for the given username, valid for TokenLifetime
func (s *JWTService) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(TokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates the token and extracts the username from the "sub"
// claim. Rejects signature mismatch, malformed structure, and expiry.
func (s *JWTService) Verify(tokenString string) (username string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}
