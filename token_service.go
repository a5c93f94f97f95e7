package webauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the issued token lifetime in hours (7 days).
const DefaultTokenExpiration = 24 * 7

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
	now             func() time.Time
}

var _ TokenService = (*TokenServiceImpl)(nil)

type TokenServiceOption func(*TokenServiceImpl)

// WithClock injects a custom clock (useful for expiry tests). The
// clock drives both the issued claims and expiry verification.
func WithClock(clock func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// NewTokenService creates a new TokenService instance. tokenExpiration
// is in hours; values <= 0 fall back to DefaultTokenExpiration.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger, opts ...TokenServiceOption) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	ts := &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// Issue creates a signed assertion bound to the given account id.
func (ts *TokenServiceImpl) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required", errors.CategoryBadInput)
	}

	now := ts.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Validate parses and verifies a raw token string. Every failure mode
// collapses into ErrInvalidToken so callers cannot probe which check
// failed. Expiry is enforced with zero leeway.
func (ts *TokenServiceImpl) Validate(raw string) (*TokenClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrInvalidToken
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID() == "" {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}
