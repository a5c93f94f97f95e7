package webauth

import (
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash. The salt is random and
// embedded in the output, so hashing the same password twice yields
// two different strings that both verify.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext password
// against the stored hash, in constant time. Mismatches and malformed
// hashes produce the same ErrInvalidCredentials.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
