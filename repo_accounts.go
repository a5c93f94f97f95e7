package webauth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the persistence surface for Account records.
type Accounts interface {
	repository.Repository[*Account]

	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	GetByAccountID(ctx context.Context, id string) (*Account, error)
	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db               *bun.DB
	deterministicIDs bool
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ AccountStore                    = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

type AccountsOption func(*accounts)

// WithDeterministicIDs derives account ids from the email via hashid
// instead of random uuids. Useful for idempotent imports.
func WithDeterministicIDs() AccountsOption {
	return func(a *accounts) {
		a.deterministicIDs = true
	}
}

func NewAccountsRepository(db *bun.DB, opts ...AccountsOption) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	repoAccounts := &accounts{
		Repository: repo,
		db:         db,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoAccounts)
		}
	}

	return repoAccounts
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

// GetByAccountID resolves an account by its string id. Unparseable ids
// behave like missing records.
func (a *accounts) GetByAccountID(ctx context.Context, id string) (*Account, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	record := &Account{}
	err = a.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	a.prepareAccountDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		// The unique index on email is the authoritative guard for
		// concurrent registrations that both pass the pre-check.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return created, nil
}

func (a *accounts) prepareAccountDefaults(record *Account) {
	if record == nil || record.ID != uuid.Nil {
		return
	}

	if a.deterministicIDs {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
			return
		}
	}

	record.ID = uuid.New()
}

// isUniqueViolation matches the duplicate-key failures surfaced by the
// sqlite and postgres drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
