package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/distria/distria/internal/domain"
)

// ProvisionalIdentity is a user record derived by decoding the bearer token
// locally. The decode is unverified (no signature check) and exists only so
// the UI can render something sensible before the backend confirms the
// session. It must never back an authorization decision; the me query result
// is the only authoritative identity.
type ProvisionalIdentity struct {
	UserID    string
	Email     string
	Role      domain.Role
	ExpiresAt time.Time
}

// User converts the provisional identity into a displayable user record.
// The subject claim doubles as the email and the display name, matching what
// the backend puts in the token.
func (p *ProvisionalIdentity) User() *domain.User {
	return &domain.User{
		ID:       p.UserID,
		FullName: p.Email,
		Email:    p.Email,
		Role:     p.Role,
		Active:   true,
	}
}

// tokenClaims is the expected payload shape of backend-issued tokens.
type tokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"rol"`
	jwt.RegisteredClaims
}

// DecodeToken extracts the provisional identity from a bearer token without
// verifying its signature.
//
// It fails closed: a malformed token, a token with no expiry claim, or a
// token whose expiry is at or before now all return an error. Callers treat
// any error identically to "no token".
func DecodeToken(raw string, now time.Time) (*ProvisionalIdentity, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, domain.Wrap(err, domain.EUNAUTHORIZED, "session.decode", "malformed token")
	}

	if claims.ExpiresAt == nil {
		return nil, domain.Unauthorized("session.decode", "token has no expiry")
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, domain.Unauthorized("session.decode", "token expired")
	}

	return &ProvisionalIdentity{
		UserID:    claims.UserID,
		Email:     claims.Subject,
		Role:      domain.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
