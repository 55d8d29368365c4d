package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/app"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) app.Config {
	t.Helper()

	v, err := app.NewViper("")
	require.NoError(t, err)
	v.Set("log.level", "error")
	v.Set("database.path", ":memory:")
	v.Set("jwt.privateKey", "app-test-secret-app-test-secret")
	v.Set("pepperFile", filepath.Join(t.TempDir(), "pepper"))
	v.Set("rateLimits.exchange.requests", 0)

	cfg, err := app.LoadConfig(v)
	require.NoError(t, err)
	return cfg
}

func start(t *testing.T, cfg app.Config) (*app.Application, *authsdk.Client) {
	t.Helper()

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, authsdk.NewClient(srv.URL, "cli")
}

func TestApplicationBasicFlow(t *testing.T) {
	a, client := start(t, testConfig(t))
	ctx := t.Context()

	account, err := a.CreateAccount(ctx, app.NewAccount{
		Domain:      "main",
		Identifier:  "alice",
		Password:    "hunter2",
		Roles:       []string{"admin"},
		Permissions: []string{"docs:read"},
	})
	require.NoError(t, err)

	tok, err := client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "alice", Password: "hunter2", Domain: "main",
	})
	require.NoError(t, err)
	require.Equal(t, account.ID, tok.EntityID)
	require.Equal(t, int64(jwtx.DefaultAccessTokenTTL.Seconds()), tok.ValidFor)

	info, err := client.Introspect(ctx, tok.Token)
	require.NoError(t, err)
	require.Equal(t, []string{"admin"}, info.Roles)
	require.Equal(t, []string{"docs:read"}, info.Permissions)
	require.Equal(t, "AuthGuard", info.Iss)

	ready, err := client.Ready(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

func TestApplicationOTP(t *testing.T) {
	a, client := start(t, testConfig(t))
	ctx := t.Context()

	account, err := a.CreateAccount(ctx, app.NewAccount{Domain: "main"})
	require.NoError(t, err)

	_, token, err := a.Issuer().IssueOTP(ctx, account.ID, 6, time.Minute)
	require.NoError(t, err)

	tok, err := client.Exchange(ctx, domain.TypeOTP, domain.TypeAccessToken, authsdk.ExchangeRequest{Token: token})
	require.NoError(t, err)
	require.Equal(t, account.ID, tok.EntityID)

	// an OTP is single use
	_, err = client.Exchange(ctx, domain.TypeOTP, domain.TypeAccessToken, authsdk.ExchangeRequest{Token: token})
	require.Error(t, err)
}

func TestApplicationRejectsBadPermission(t *testing.T) {
	a, _ := start(t, testConfig(t))

	_, err := a.CreateAccount(t.Context(), app.NewAccount{Domain: "main", Permissions: []string{"nogroup"}})
	require.ErrorContains(t, err, "group:name")
}

func TestApplicationRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.TokenStore.Driver = app.TokenStoreRedis
	cfg.TokenStore.Redis.Addr = mr.Addr()

	a, client := start(t, cfg)
	ctx := t.Context()

	_, err := a.CreateAccount(ctx, app.NewAccount{Domain: "main", Identifier: "bob", Password: "pw"})
	require.NoError(t, err)

	tok, err := client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "bob", Password: "pw", Domain: "main",
	})
	require.NoError(t, err)

	// the refresh record lives in redis, keyed under the prefix
	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.Contains(t, keys[0], "authguard:")

	_, err = client.Exchange(ctx, domain.TypeRefresh, domain.TypeAccessToken, authsdk.ExchangeRequest{Token: tok.RefreshToken})
	require.NoError(t, err)

	ready, err := client.Ready(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.TokenStore)

	mr.SetError("LOADING dataset in memory")
	_, err = client.Ready(ctx)
	require.Error(t, err)
}

func TestApplicationRejectsBadSigningKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWT.Algorithm = jwtx.RSA256
	cfg.JWT.PrivateKey = "not a key"

	_, err := app.New(cfg)
	require.Error(t, err)
}

func TestApplicationCSRF(t *testing.T) {
	cfg := testConfig(t)
	cfg.CSRF.Key = "app-csrf-key"
	_, client := start(t, cfg)

	resp, err := http.Get(client.BaseURL + "/v1/csrf")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out, err := client.FetchCSRFToken(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, out.Token)
}

func TestApplicationServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Addr = "127.0.0.1:0"

	a, err := app.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
