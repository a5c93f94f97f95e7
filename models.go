package webauth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the persistent user record. The password hash is opaque
// to everything outside the hashing helpers and never serializes.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	ProfilePublic bool       `bun:"profile_public" json:"profile_public"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AccountSummary is the public projection of an Account, the only
// shape that crosses the API boundary.
type AccountSummary struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	ProfilePublic bool   `json:"profile_public"`
}

// Summary returns the public projection of the account
func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:            a.ID.String(),
		Email:         a.Email,
		Name:          a.Name,
		ProfilePublic: a.ProfilePublic,
	}
}
