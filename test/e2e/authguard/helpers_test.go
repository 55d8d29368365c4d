//go:build integration

package authguard_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/app"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the full application in process against a real
 * Redis token store started with testcontainers. Accounts live in a
 * throwaway SQLite file per test.
 */

const (
	redisImage = "redis:7-alpine"

	testDomain   = "main"
	testPassword = "Sup3r-Secret!"
)

// setupRedis starts a Redis container and returns its address.
func setupRedis(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// startService boots the application against redisAddr and returns it with
// an SDK client pointed at an in-process HTTP server.
func startService(t *testing.T, redisAddr string, mutate func(*app.Config)) (*app.Application, *authsdk.Client) {
	t.Helper()
	dir := t.TempDir()

	v, err := app.NewViper("")
	require.NoError(t, err)
	v.Set("env", "test")
	v.Set("log.level", "error")
	v.Set("database.path", filepath.Join(dir, "authguard.db"))
	v.Set("pepperFile", filepath.Join(dir, "pepper"))
	v.Set("jwt.privateKey", "e2e-signing-secret-e2e-signing-secret")
	v.Set("tokenStore.driver", app.TokenStoreRedis)
	v.Set("tokenStore.redis.addr", redisAddr)
	v.Set("tokenStore.redis.prefix", fmt.Sprintf("e2e:%s:", t.Name()))

	cfg, err := app.LoadConfig(v)
	require.NoError(t, err)
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	return a, authsdk.NewClient(srv.URL, "e2e")
}

// createUser provisions an account with password credentials.
func createUser(t *testing.T, a *app.Application, identifier string, roles ...string) string {
	t.Helper()

	account, err := a.CreateAccount(t.Context(), app.NewAccount{
		Domain:     testDomain,
		Identifier: identifier,
		Password:   testPassword,
		Roles:      roles,
	})
	require.NoError(t, err)
	return account.ID
}

// assertTokenResponse verifies an access token response carries a refresh token.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse, accountID string) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.Token, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, accountID, resp.EntityID)
	require.Positive(t, resp.ValidFor)
}

// assertErrorCode checks that err is an API error with the given status and code.
func assertErrorCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected an API error, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}
