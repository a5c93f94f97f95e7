package webauth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther composes the credential hasher, token service, and account
// store into the registration and login flows.
type Auther struct {
	store        AccountStore
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther
func NewAuthenticator(store AccountStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService sets a custom token service.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates an account with a hashed credential and returns the
// public summary. The plaintext password never leaves this flow and is
// never logged.
func (s *Auther) Register(ctx context.Context, name, email, password string) (*AccountSummary, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.IsNotFound(err) {
		s.logger.Error("Register lookup error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check existing account")
	}

	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryValidation {
			return nil, richErr
		}
		s.logger.Error("Register hash error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	created, err := s.store.Register(ctx, &Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// Two concurrent registrations can both pass the pre-check; the
		// store's uniqueness constraint is the authoritative guard and
		// surfaces as the same conflict.
		if IsConflict(err) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Register create error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	return created.Summary(), nil
}

// Login verifies the credential and issues a bearer token bound to the
// account id. Unknown emails and wrong passwords are indistinguishable.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *AccountSummary, error) {
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("Login lookup error", "error", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account")
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Issue(account.ID.String())
	if err != nil {
		s.logger.Error("Login token issue error", "error", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue token")
	}

	return token, account.Summary(), nil
}

// WhoAmI validates a raw token and resolves its subject to the public
// account summary. An invalid token is Unauthorized; a valid token
// whose account has since been removed is NotFound.
func (s *Auther) WhoAmI(ctx context.Context, rawToken string) (*AccountSummary, error) {
	claims, err := s.tokenService.Validate(rawToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.IdentityFromSession(ctx, claims.UserID())
}

// IdentityFromSession resolves an already-validated subject id to the
// public account summary.
func (s *Auther) IdentityFromSession(ctx context.Context, userID string) (*AccountSummary, error) {
	account, err := s.store.GetByAccountID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("IdentityFromSession lookup error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve account")
	}

	return account.Summary(), nil
}
