package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-backoffice/internal/access"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is a staff account row. Role membership lives in account_roles so
// an account can hold several roles at once.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID            uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	DisplayName   string     `bun:"display_name" json:"display_name"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Active        bool       `bun:"active,notnull,default:true" json:"active"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	DeactivatedAt *time.Time `bun:"deactivated_at,nullzero" json:"deactivated_at,omitempty"`

	Roles []*AccountRole `bun:"rel:has-many,join:id=account_id" json:"roles,omitempty"`
}

// AccountRole attaches a role identifier to an account.
type AccountRole struct {
	bun.BaseModel `bun:"table:account_roles,alias:ar"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid" json:"account_id"`
	RoleID    string    `bun:"role_id,notnull" json:"role_id"`
}

// NewAccountRepository creates a repository for Account records.
func NewAccountRepository(db *bun.DB) repository.Repository[*Account] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Account]{
		NewRecord:          func() *Account { return &Account{} },
		GetID:              func(a *Account) uuid.UUID { return a.ID },
		SetID:              func(a *Account, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "email" },
		GetIdentifierValue: func(a *Account) string { return a.Email },
	})
}

// BunAccountStore resolves accounts into access actors. Every lookup hits
// the database so deactivation takes effect on the next request; this store
// must not sit behind a cache.
type BunAccountStore struct {
	db *bun.DB
}

// NewBunAccountStore constructs the store.
func NewBunAccountStore(db *bun.DB) *BunAccountStore {
	return &BunAccountStore{db: db}
}

// GetActor fetches the account and its roles fresh from the database.
func (s *BunAccountStore) GetActor(ctx context.Context, id uuid.UUID) (*access.Actor, error) {
	account := new(Account)
	err := s.db.NewSelect().
		Model(account).
		Relation("Roles").
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, mapAccountError(err, id.String())
	}
	return account.Actor(), nil
}

// Actor projects the account onto the access gate's view of it.
func (a *Account) Actor() *access.Actor {
	roleIDs := make([]string, 0, len(a.Roles))
	for _, role := range a.Roles {
		roleIDs = append(roleIDs, role.RoleID)
	}
	return &access.Actor{
		ID:      a.ID,
		RoleIDs: roleIDs,
		Active:  a.Active,
	}
}

func mapAccountError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || isNoRows(err) {
		return &access.NotFoundError{Key: key}
	}
	return fmt.Errorf("account store error: %w", err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ access.ActorStore = (*BunAccountStore)(nil)
