package webauth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/caldris/go-webauth/middleware/jwtware"
)

type tokenValidatorAdapter struct {
	ts TokenService
}

func (a tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := a.ts.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ProtectedRoute returns the bearer token gate for the given config.
// It attaches the validated subject under the configured Locals key and
// enriches the request context for downstream handlers.
func ProtectedRoute(cfg Config, ts TokenService, errorHandler fiber.ErrorHandler) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenValidator: tokenValidatorAdapter{ts},
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			return WithUserID(ctx, claims.UserID())
		},
	})
}

// GetSessionUserID reads the validated subject stored by the gate.
func GetSessionUserID(c *fiber.Ctx, key string) (string, bool) {
	claims, ok := c.Locals(key).(jwtware.AuthClaims)
	if !ok || claims == nil {
		return "", false
	}
	return claims.UserID(), true
}

// AuthErrorHandler folds every gate failure into the uniform
// unauthorized result before delegating, so header-shape problems and
// token problems are indistinguishable to clients.
func AuthErrorHandler(next fiber.ErrorHandler) fiber.ErrorHandler {
	return func(c *fiber.Ctx, _ error) error {
		return next(c, ErrInvalidToken)
	}
}

// RenderError maps rich errors onto the public JSON error shape.
// Uncategorized failures are logged and rendered as a generic internal
// error with no implementation detail.
func RenderError(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		switch richErr.Category {
		case errors.CategoryInternal, errors.CategoryOperation:
			logger.Error(
				"internal error",
				"error", richErr.Message,
				"category", richErr.Category,
				"details", print.MaybePrettyJSON(richErr.Metadata),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong",
			})
		default:
			code := richErr.Code
			if code <= 0 {
				code = fiber.StatusBadRequest
			}
			return c.Status(code).JSON(fiber.Map{
				"error": richErr.Message,
			})
		}
	}
}
