//go:build integration

package authguard_test

import (
	"net/http"
	"testing"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginRefreshRevoke walks the refresh token lifecycle against Redis:
// 1. Exchange a password for an access token
// 2. Refresh it and check rotation
// 3. Replaying the consumed refresh token fails
// 4. Revoking the new refresh token makes it unusable
func TestLoginRefreshRevoke(t *testing.T) {
	a, client := startService(t, setupRedis(t), nil)
	ctx := t.Context()
	accountID := createUser(t, a, "alice", "admin")

	login, err := client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "alice", Password: testPassword, Domain: testDomain,
	})
	require.NoError(t, err)
	assertTokenResponse(t, login, accountID)

	refreshed, err := client.Exchange(ctx, domain.TypeRefresh, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Token: login.RefreshToken,
	})
	require.NoError(t, err)
	assertTokenResponse(t, refreshed, accountID)
	require.NotEqual(t, login.Token, refreshed.Token, "Access token should be rotated")
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken, "Refresh token should be rotated")

	_, err = client.Exchange(ctx, domain.TypeRefresh, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Token: login.RefreshToken,
	})
	assertErrorCode(t, err, http.StatusUnauthorized, domain.CodeInvalidToken)

	require.NoError(t, client.Revoke(ctx, domain.TypeAccessToken, refreshed.RefreshToken))

	_, err = client.Exchange(ctx, domain.TypeRefresh, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Token: refreshed.RefreshToken,
	})
	assertErrorCode(t, err, http.StatusUnauthorized, domain.CodeInvalidToken)
}

func TestWrongPassword(t *testing.T) {
	a, client := startService(t, setupRedis(t), nil)
	createUser(t, a, "bob")

	_, err := client.Exchange(t.Context(), domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "bob", Password: "nope", Domain: testDomain,
	})
	assertErrorCode(t, err, http.StatusUnauthorized, domain.CodePasswordsDoNotMatch)

	_, err = client.Exchange(t.Context(), domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "carol", Password: testPassword, Domain: testDomain,
	})
	assertErrorCode(t, err, http.StatusUnauthorized, domain.CodeCredentialsDoesNotExist)
}

func TestUnknownExchange(t *testing.T) {
	_, client := startService(t, setupRedis(t), nil)

	_, err := client.Exchange(t.Context(), domain.TypeAccessToken, domain.TypeBasic, authsdk.ExchangeRequest{})
	assertErrorCode(t, err, http.StatusBadRequest, domain.CodeUnknownExchange)
}

func TestIntrospectAndHealth(t *testing.T) {
	a, client := startService(t, setupRedis(t), nil)
	ctx := t.Context()
	accountID := createUser(t, a, "dave", "user")

	tok, err := client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "dave", Password: testPassword, Domain: testDomain,
	})
	require.NoError(t, err)

	info, err := client.Introspect(ctx, tok.Token)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, accountID, info.Sub)
	require.Equal(t, []string{"user"}, info.Roles)

	_, err = client.Introspect(ctx, tok.Token+"x")
	require.Error(t, err)

	live, err := client.Live(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.Ready(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.TokenStore)
}
