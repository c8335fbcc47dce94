package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the persisted bearer token.
type Credential struct {
	Token     string    `yaml:"access_token"`
	TokenType string    `yaml:"token_type,omitempty"`
	IssuedAt  time.Time `yaml:"issued_at"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// NewCredential builds a credential from a login response. When expiresIn
// is zero the expiry is taken from the token's exp claim, if it has one.
func NewCredential(token, tokenType string, expiresIn int, now time.Time) *Credential {
	c := &Credential{
		Token:     token,
		TokenType: tokenType,
		IssuedAt:  now,
	}
	if expiresIn > 0 {
		c.ExpiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	} else {
		c.ExpiresAt = TokenExpiry(token)
	}
	return c
}

// Expired reports whether the credential has a known expiry before now.
func (c *Credential) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The signing key belongs to the service; the client only needs the hint.
// Opaque tokens return the zero time.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
