package webauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the signed assertion carried by a bearer token.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// UserID returns the account id the token is bound to
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiry instant, zero when absent
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}
