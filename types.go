package webauth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// TokenService signs and verifies the bearer tokens issued at login
type TokenService interface {
	Issue(userID string) (string, error)
	Validate(raw string) (*TokenClaims, error)
}

// AccountStore is the narrow view of the user directory the auth flows
// need. Email uniqueness is enforced by the store, not by callers.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByAccountID(ctx context.Context, id string) (*Account, error)
	Register(ctx context.Context, record *Account) (*Account, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*AccountSummary, error)
	Login(ctx context.Context, email, password string) (string, *AccountSummary, error)
	WhoAmI(ctx context.Context, rawToken string) (*AccountSummary, error)
	IdentityFromSession(ctx context.Context, userID string) (*AccountSummary, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetAuthScheme() string
	GetContextKey() string
	GetIssuer() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
