package sqlite

import (
	"context"
	"database/sql"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback and the outer DB stays open

// Ping is a no-op for transactions; the connection is held by the tx.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.AccountRepo           { return &accountsRepo{db: t.tx} }
func (t *txStore) Apps() store.AppRepo                   { return &appsRepo{db: t.tx} }
func (t *txStore) Credentials() store.CredentialRepo     { return &credentialsRepo{db: t.tx} }
func (t *txStore) AccountTokens() store.AccountTokenRepo { return &accountTokensRepo{db: t.tx} }
func (t *txStore) OTPs() store.OTPRepo                   { return &otpsRepo{db: t.tx} }
func (t *txStore) TOTPKeys() store.TOTPKeyRepo           { return &totpKeysRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
