package service

import (
	"context"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store/drivers/sqlite"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "authguard-test"

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestAlgorithm(t *testing.T) *jwtx.Algorithm {
	t.Helper()
	alg, err := jwtx.ParseAlgorithm(jwtx.HMAC256, nil, []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return alg
}

func newTestGenerator(t *testing.T) *jwtx.Generator {
	t.Helper()
	return jwtx.NewGenerator(testIssuer, newTestAlgorithm(t))
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:         idx.New().String(),
		Domain:     "main",
		ExternalID: "ext-42",
		Active:     true,
		Roles:      []string{"admin", "user"},
		Permissions: []domain.Permission{
			{Group: "billing", Name: "read"},
			{Group: "billing", Name: "write"},
			{Group: "users", Name: "read"},
		},
		Email: &domain.Contact{Value: "a@example.com", Verified: true},
		Phone: &domain.Contact{Value: "+100", Verified: false},
	}
}

func createAccount(t *testing.T, s store.Store, a *domain.Account) *domain.Account {
	t.Helper()
	require.NoError(t, s.Accounts().Create(context.Background(), a))
	return a
}

func verifyClaims(t *testing.T, gen *jwtx.Generator, token string) *jwtx.Claims {
	t.Helper()
	claims, err := jwtx.NewVerifier(gen.Algorithm, testIssuer).Verify(token)
	require.NoError(t, err)
	return claims
}

func saveRecord(t *testing.T, s store.Store, rec *domain.AccountToken) {
	t.Helper()
	if rec.ID == "" {
		rec.ID = idx.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, s.AccountTokens().Save(context.Background(), rec))
}
