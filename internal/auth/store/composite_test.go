package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store/drivers/sqlite"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(token string) *domain.AccountToken {
	return &domain.AccountToken{
		ID:        idx.New().String(),
		Token:     token,
		AccountID: "acct",
		Purpose:   domain.PurposeRefreshToken,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
}

func TestWithAccountTokensRoutesRecords(t *testing.T) {
	ctx := context.Background()
	base, overlay := openStore(t), openStore(t)
	s := store.WithAccountTokens(base, overlay.AccountTokens())

	require.NoError(t, s.AccountTokens().Save(ctx, record("outside-tx")))

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.AccountTokens().Save(ctx, record("inside-tx"))
	})
	require.NoError(t, err)

	tx, err := s.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AccountTokens().Save(ctx, record("manual-tx")))
	require.NoError(t, tx.Rollback())

	for _, token := range []string{"outside-tx", "inside-tx", "manual-tx"} {
		_, err := overlay.AccountTokens().GetByToken(ctx, token)
		require.NoError(t, err, token)

		_, err = base.AccountTokens().GetByToken(ctx, token)
		require.ErrorIs(t, err, store.ErrNotFound, token)
	}
}

func TestWithAccountTokensKeepsBaseRepos(t *testing.T) {
	ctx := context.Background()
	base, overlay := openStore(t), openStore(t)
	s := store.WithAccountTokens(base, overlay.AccountTokens())

	account := &domain.Account{ID: idx.New().String(), Domain: "main", Active: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Accounts().Create(ctx, account)
	}))

	got, err := base.Accounts().GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.NoError(t, s.Ping(ctx))
}
