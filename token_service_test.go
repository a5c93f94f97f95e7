package webauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	webauth "github.com/caldris/go-webauth"
)

func TestTokenService_Issue(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := webauth.NewTokenService(signingKey, 24, "test-issuer", nil)

	t.Run("issues a valid HS256 token", func(t *testing.T) {
		raw, err := service.Issue("user-123")
		assert.NoError(t, err)
		assert.NotEmpty(t, raw)

		token, err := jwt.ParseWithClaims(raw, &webauth.TokenClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})
		assert.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, jwt.SigningMethodHS256.Alg(), token.Method.Alg())

		claims, ok := token.Claims.(*webauth.TokenClaims)
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "user-123", claims.RegisteredClaims.Subject)
		assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)
		assert.NotNil(t, claims.RegisteredClaims.IssuedAt)
		assert.NotNil(t, claims.RegisteredClaims.ExpiresAt)
	})

	t.Run("expiry is issued-at plus the configured hours", func(t *testing.T) {
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		clocked := webauth.NewTokenService(signingKey, 24*7, "", nil,
			webauth.WithClock(func() time.Time { return at }),
		)

		raw, err := clocked.Issue("user-123")
		assert.NoError(t, err)

		claims, err := clocked.Validate(raw)
		assert.NoError(t, err)
		assert.Equal(t, at.Add(7*24*time.Hour), claims.Expires())
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		_, err := service.Issue("")
		assert.Error(t, err)
	})
}

func TestTokenService_Validate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := webauth.NewTokenService(signingKey, 24, "test-issuer", nil)

	t.Run("round trip returns the subject", func(t *testing.T) {
		raw, err := service.Issue("user-123")
		assert.NoError(t, err)

		claims, err := service.Validate(raw)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("corrupted token is invalid", func(t *testing.T) {
		raw, err := service.Issue("user-123")
		assert.NoError(t, err)

		// flip one character in the signature segment
		corrupted := raw[:len(raw)-2] + flip(raw[len(raw)-2:])

		_, err = service.Validate(corrupted)
		assert.Equal(t, webauth.ErrInvalidToken, err)
	})

	t.Run("token signed with a different key is invalid", func(t *testing.T) {
		other := webauth.NewTokenService([]byte("other-key"), 24, "test-issuer", nil)
		raw, err := other.Issue("user-123")
		assert.NoError(t, err)

		_, err = service.Validate(raw)
		assert.Equal(t, webauth.ErrInvalidToken, err)
	})

	t.Run("unsigned token is invalid", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user-123",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, err = service.Validate(raw)
		assert.Equal(t, webauth.ErrInvalidToken, err)
	})

	t.Run("garbage is invalid, not a panic", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		assert.Equal(t, webauth.ErrInvalidToken, err)

		_, err = service.Validate("")
		assert.Equal(t, webauth.ErrInvalidToken, err)
	})

	t.Run("all failure modes share one error value", func(t *testing.T) {
		_, malformedErr := service.Validate("garbage")

		other := webauth.NewTokenService([]byte("other-key"), 24, "test-issuer", nil)
		raw, _ := other.Issue("user-123")
		_, badSigErr := service.Validate(raw)

		assert.Equal(t, malformedErr, badSigErr)
	})
}

func TestTokenService_Expiry(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := issuedAt.Add(24 * time.Hour)

	issue := func() string {
		t.Helper()
		service := webauth.NewTokenService(signingKey, 24, "", nil,
			webauth.WithClock(func() time.Time { return issuedAt }),
		)
		raw, err := service.Issue("user-123")
		assert.NoError(t, err)
		return raw
	}

	validateAt := func(raw string, at time.Time) error {
		service := webauth.NewTokenService(signingKey, 24, "", nil,
			webauth.WithClock(func() time.Time { return at }),
		)
		_, err := service.Validate(raw)
		return err
	}

	raw := issue()

	t.Run("valid one second before expiry", func(t *testing.T) {
		assert.NoError(t, validateAt(raw, expiry.Add(-time.Second)))
	})

	t.Run("invalid one second after expiry", func(t *testing.T) {
		assert.Equal(t, webauth.ErrInvalidToken, validateAt(raw, expiry.Add(time.Second)))
	})
}

func flip(s string) string {
	b := []byte(s)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	return string(b)
}
