package webauth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds  = "INVALID_CREDENTIALS"
	TextCodeEmailTaken    = "EMAIL_TAKEN"
	TextCodeInvalidToken  = "INVALID_TOKEN"
	TextCodeAccountGone   = "ACCOUNT_NOT_FOUND"
	TextCodeMissingSecret = "MISSING_SIGNING_SECRET"
)

// ErrInvalidCredentials is the unified login failure. Unknown emails
// and wrong passwords both map here so responses cannot be used to
// enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrEmailTaken is returned when registering an email that already has
// an account, whether caught by the pre-check or by the store's
// uniqueness constraint.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrInvalidToken is the uniform negative result of token validation.
// Malformed, badly signed, expired, and wrong-algorithm tokens are
// indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotFound marks a valid token whose subject no longer
// exists, distinct from ErrInvalidToken.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountGone).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// IsConflict reports whether err carries the conflict category.
func IsConflict(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryConflict
}
