package webauth

import (
	"os"
	"strconv"

	"github.com/goliatone/go-errors"
)

// Environment variables read by NewConfigFromEnv.
const (
	EnvSigningSecret   = "AUTH_SIGNING_SECRET"
	EnvTokenExpiration = "AUTH_TOKEN_EXPIRATION"
	EnvIssuer          = "AUTH_ISSUER"
)

// EnvConfig is the environment-backed Config implementation.
type EnvConfig struct {
	SigningKey      string
	TokenExpiration int
	AuthScheme      string
	ContextKey      string
	Issuer          string
}

var _ Config = (*EnvConfig)(nil)

// NewConfigFromEnv loads configuration from the process environment.
// A missing signing secret is a startup failure, never a per-request
// condition.
func NewConfigFromEnv() (*EnvConfig, error) {
	secret := os.Getenv(EnvSigningSecret)
	if secret == "" {
		return nil, errors.New("missing required "+EnvSigningSecret, errors.CategoryValidation).
			WithTextCode(TextCodeMissingSecret)
	}

	cfg := &EnvConfig{
		SigningKey:      secret,
		TokenExpiration: DefaultTokenExpiration,
		AuthScheme:      "Bearer",
		ContextKey:      "user",
		Issuer:          os.Getenv(EnvIssuer),
	}

	if raw := os.Getenv(EnvTokenExpiration); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, errors.New("invalid "+EnvTokenExpiration, errors.CategoryValidation).
				WithMetadata(map[string]any{"value": raw})
		}
		cfg.TokenExpiration = hours
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *EnvConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *EnvConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}
