package store

import (
	"context"
	"errors"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, redis)
// implement all or part of it. It exposes sub-repositories to keep concerns
// tidy and to stop callers from nesting transactions.
type Store interface {
	Accounts() AccountRepo
	Apps() AppRepo
	Credentials() CredentialRepo
	AccountTokens() AccountTokenRepo
	OTPs() OTPRepo
	TOTPKeys() TOTPKeyRepo

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the backing connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// AccountTokenRepo persists single-purpose token records. Records are keyed
// by their token value; drivers only ever store a hash of it.
type AccountTokenRepo interface {
	// Save inserts a record. A record with the same token returns ErrAlreadyExists.
	Save(ctx context.Context, t *domain.AccountToken) error

	// GetByToken returns the record for token or ErrNotFound.
	GetByToken(ctx context.Context, token string) (*domain.AccountToken, error)

	// DeleteByToken removes and returns the record for token. Among
	// concurrent callers at most one receives the record; the rest get
	// ErrNotFound.
	DeleteByToken(ctx context.Context, token string) (*domain.AccountToken, error)

	// DeleteExpired purges records that expired before the given time and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type AccountRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
}

type AppRepo interface {
	GetByID(ctx context.Context, id string) (*domain.App, error)
	Create(ctx context.Context, a *domain.App) error
}

type CredentialRepo interface {
	// GetByIdentifier looks up credentials by login identifier within a domain.
	GetByIdentifier(ctx context.Context, domainName, identifier string) (*domain.Credentials, error)
	Create(ctx context.Context, c *domain.Credentials) error
}

type OTPRepo interface {
	GetByID(ctx context.Context, id string) (*domain.OneTimePassword, error)
	Create(ctx context.Context, o *domain.OneTimePassword) error

	// DeleteByID removes and returns the password. Among concurrent callers
	// at most one receives it; the rest get ErrNotFound.
	DeleteByID(ctx context.Context, id string) (*domain.OneTimePassword, error)
}

type TOTPKeyRepo interface {
	// GetByAccountID returns the most recently created key of the account.
	GetByAccountID(ctx context.Context, accountID string) (*domain.TOTPKey, error)
	Create(ctx context.Context, k *domain.TOTPKey) error
}
