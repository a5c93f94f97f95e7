// Package jwtware is the bearer token gate for fiber handlers. It is a
// pure check: extract, validate, attach the subject, or short-circuit
// with Unauthorized. It never touches account storage.
package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenValidator validates raw tokens without importing the root
// package. It mirrors the TokenService.Validate method.
type TokenValidator interface {
	Validate(raw string) (AuthClaims, error)
}

// AuthClaims is the validated subject the middleware attaches to the
// request.
type AuthClaims interface {
	UserID() string
}

type Config struct {
	// Filter skips the gate for matching requests.
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	// ContextKey is the Locals key the claims are stored under.
	ContextKey string
	AuthScheme string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// ContextEnricher is an optional function to propagate the subject
	// to the standard Go context after successful validation.
	ContextEnricher func(ctx context.Context, claims AuthClaims) context.Context
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

// ExtractRawToken pulls the bearer credential from the Authorization
// header. Anything other than "<scheme> <token>" is a rejection, not a
// crash.
func ExtractRawToken(c *fiber.Ctx, authScheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrJWTMissingOrMalformed
	}

	prefix := authScheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrJWTMissingOrMalformed
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" || strings.ContainsRune(token, ' ') {
		return "", ErrJWTMissingOrMalformed
	}

	return token, nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}
