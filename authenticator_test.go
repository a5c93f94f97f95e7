package webauth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	webauth "github.com/caldris/go-webauth"
)

// MockAccountStore implements webauth.AccountStore for testing
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*webauth.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*webauth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) GetByAccountID(ctx context.Context, id string) (*webauth.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*webauth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) Register(ctx context.Context, record *webauth.Account) (*webauth.Account, error) {
	args := m.Called(ctx, record)
	if acc := args.Get(0); acc != nil {
		return acc.(*webauth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

type testConfig struct {
	signingKey string
	expiration int
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetTokenExpiration() int {
	if c.expiration == 0 {
		return 24
	}
	return c.expiration
}

func (c testConfig) GetAuthScheme() string { return "Bearer" }
func (c testConfig) GetContextKey() string { return "user" }
func (c testConfig) GetIssuer() string     { return "" }

func notFound() error {
	return repository.NewRecordNotFound()
}

func adaAccount(t *testing.T) *webauth.Account {
	t.Helper()
	hash, err := webauth.HashPassword("s3cret123")
	assert.NoError(t, err)
	return &webauth.Account{
		ID:            uuid.New(),
		Name:          "Ada",
		Email:         "ada@example.com",
		PasswordHash:  hash,
		ProfilePublic: true,
	}
}

func TestAuther_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and returns public summary", func(t *testing.T) {
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, notFound())
		store.On("Register", mock.Anything, mock.MatchedBy(func(a *webauth.Account) bool {
			// the plaintext never reaches the store
			return a.Email == "ada@example.com" &&
				a.Name == "Ada" &&
				a.PasswordHash != "" &&
				a.PasswordHash != "s3cret123"
		})).Return(&webauth.Account{
			ID:    uuid.New(),
			Name:  "Ada",
			Email: "ada@example.com",
		}, nil)

		auther := webauth.NewAuthenticator(store, testConfig{})

		summary, err := auther.Register(ctx, "Ada", "ada@example.com", "s3cret123")
		assert.NoError(t, err)
		assert.Equal(t, "ada@example.com", summary.Email)
		assert.Equal(t, "Ada", summary.Name)
		assert.NotEmpty(t, summary.ID)

		store.AssertExpectations(t)
	})

	t.Run("duplicate email caught by the pre-check", func(t *testing.T) {
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(adaAccount(t), nil)

		auther := webauth.NewAuthenticator(store, testConfig{})

		_, err := auther.Register(ctx, "Ada", "ada@example.com", "s3cret123")
		assert.Equal(t, webauth.ErrEmailTaken, err)
		store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email caught by the store constraint", func(t *testing.T) {
		// both racing registrations pass the pre-check; the insert loses
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, notFound())
		store.On("Register", mock.Anything, mock.Anything).Return(nil, webauth.ErrEmailTaken)

		auther := webauth.NewAuthenticator(store, testConfig{})

		_, err := auther.Register(ctx, "Ada", "ada@example.com", "s3cret123")
		assert.Equal(t, webauth.ErrEmailTaken, err)
	})

	t.Run("empty password is a validation error", func(t *testing.T) {
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, notFound())

		auther := webauth.NewAuthenticator(store, testConfig{})

		_, err := auther.Register(ctx, "Ada", "ada@example.com", "")
		assert.Error(t, err)
		store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a token bound to the account", func(t *testing.T) {
		account := adaAccount(t)
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(account, nil)

		auther := webauth.NewAuthenticator(store, testConfig{})

		token, summary, err := auther.Login(ctx, "ada@example.com", "s3cret123")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, account.ID.String(), summary.ID)
		assert.Equal(t, "ada@example.com", summary.Email)

		claims, err := auther.TokenService().Validate(token)
		assert.NoError(t, err)
		assert.Equal(t, account.ID.String(), claims.UserID())
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(adaAccount(t), nil)
		store.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, notFound())

		auther := webauth.NewAuthenticator(store, testConfig{})

		_, _, wrongPassword := auther.Login(ctx, "ada@example.com", "wrong")
		_, _, unknownEmail := auther.Login(ctx, "nobody@example.com", "wrong")

		assert.Equal(t, webauth.ErrInvalidCredentials, wrongPassword)
		assert.Equal(t, webauth.ErrInvalidCredentials, unknownEmail)
		assert.Equal(t, wrongPassword, unknownEmail)
	})
}

func TestAuther_WhoAmI(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves to the public summary", func(t *testing.T) {
		account := adaAccount(t)
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(account, nil)
		store.On("GetByAccountID", mock.Anything, account.ID.String()).Return(account, nil)

		auther := webauth.NewAuthenticator(store, testConfig{})

		token, _, err := auther.Login(ctx, "ada@example.com", "s3cret123")
		assert.NoError(t, err)

		summary, err := auther.WhoAmI(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, account.ID.String(), summary.ID)
		assert.Equal(t, "ada@example.com", summary.Email)
		assert.True(t, summary.ProfilePublic)
	})

	t.Run("corrupted token is unauthorized", func(t *testing.T) {
		account := adaAccount(t)
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(account, nil)

		auther := webauth.NewAuthenticator(store, testConfig{})

		token, _, err := auther.Login(ctx, "ada@example.com", "s3cret123")
		assert.NoError(t, err)

		corrupted := token[:len(token)-2] + flip(token[len(token)-2:])

		_, err = auther.WhoAmI(ctx, corrupted)
		assert.Equal(t, webauth.ErrInvalidToken, err)
		store.AssertNotCalled(t, "GetByAccountID", mock.Anything, mock.Anything)
	})

	t.Run("account removed after issuance is not found, not unauthorized", func(t *testing.T) {
		account := adaAccount(t)
		store := &MockAccountStore{}
		store.On("GetByEmail", mock.Anything, "ada@example.com").Return(account, nil)
		store.On("GetByAccountID", mock.Anything, account.ID.String()).Return(nil, notFound())

		auther := webauth.NewAuthenticator(store, testConfig{})

		token, _, err := auther.Login(ctx, "ada@example.com", "s3cret123")
		assert.NoError(t, err)

		_, err = auther.WhoAmI(ctx, token)
		assert.Equal(t, webauth.ErrAccountNotFound, err)
		assert.NotEqual(t, webauth.ErrInvalidToken, err)
	})
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()

	// in-memory store that behaves like the directory contract
	store := newFakeDirectory()
	auther := webauth.NewAuthenticator(store, testConfig{})

	summary, err := auther.Register(ctx, "Ada", "ada@example.com", "s3cret123")
	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", summary.Email)

	_, _, err = auther.Login(ctx, "ada@example.com", "wrong")
	assert.Equal(t, webauth.ErrInvalidCredentials, err)

	token, logged, err := auther.Login(ctx, "ada@example.com", "s3cret123")
	assert.NoError(t, err)
	assert.Equal(t, summary.ID, logged.ID)
	assert.Equal(t, "ada@example.com", logged.Email)

	me, err := auther.WhoAmI(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, summary.ID, me.ID)

	// second registration with the same email conflicts, first is intact
	_, err = auther.Register(ctx, "Other", "ada@example.com", "different1")
	assert.Equal(t, webauth.ErrEmailTaken, err)

	again, err := auther.WhoAmI(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
}

type fakeDirectory struct {
	byEmail map[string]*webauth.Account
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byEmail: map[string]*webauth.Account{}}
}

func (d *fakeDirectory) GetByEmail(_ context.Context, email string) (*webauth.Account, error) {
	if acc, ok := d.byEmail[email]; ok {
		return acc, nil
	}
	return nil, notFound()
}

func (d *fakeDirectory) GetByAccountID(_ context.Context, id string) (*webauth.Account, error) {
	for _, acc := range d.byEmail {
		if acc.ID.String() == id {
			return acc, nil
		}
	}
	return nil, notFound()
}

func (d *fakeDirectory) Register(_ context.Context, record *webauth.Account) (*webauth.Account, error) {
	if _, ok := d.byEmail[record.Email]; ok {
		return nil, webauth.ErrEmailTaken
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	d.byEmail[record.Email] = record
	return record, nil
}
