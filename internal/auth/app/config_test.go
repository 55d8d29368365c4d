package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/app"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v, err := app.NewViper("")
	require.NoError(t, err)
	v.Set("jwt.privateKey", "secret")

	cfg, err := app.LoadConfig(v)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, jwtx.HMAC256, cfg.JWT.Algorithm)
	require.Equal(t, "AuthGuard", cfg.JWT.Issuer)
	require.Equal(t, app.TokenStoreSQLite, cfg.TokenStore.Driver)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, cfg.AccessToken.TokenLife)
	require.Equal(t, jwtx.DefaultRefreshTokenTTL, cfg.AccessToken.RefreshTokenLife)
	require.True(t, cfg.AccessToken.IncludePermissions)
	require.False(t, cfg.AccessToken.UseJTI)
	require.Equal(t, 5*time.Minute, cfg.AuthorizationCode.TokenLife)
	require.Zero(t, cfg.APIKey.TokenLife)
	require.Equal(t, time.Hour, cfg.Housekeeping.Interval)
	require.Equal(t, 10, cfg.RateLimits.Exchange.RequestsPerWindow)
	require.Equal(t, time.Minute, cfg.RateLimits.Exchange.Window)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("AUTHGUARD_JWT_PRIVATEKEY", "env-secret")
	t.Setenv("AUTHGUARD_JWT_ALGORITHM", jwtx.HMAC512)
	t.Setenv("AUTHGUARD_ACCESSTOKEN_TOKENLIFE", "30m")
	t.Setenv("AUTHGUARD_ACCESSTOKEN_USEJTI", "true")
	t.Setenv("AUTHGUARD_EXCHANGE_CHECKREFRESHTOKENREQUESTIP", "true")
	t.Setenv("AUTHGUARD_RATELIMITS_EXCHANGE_REQUESTS", "3")

	v, err := app.NewViper("")
	require.NoError(t, err)
	cfg, err := app.LoadConfig(v)
	require.NoError(t, err)

	require.Equal(t, "env-secret", cfg.JWT.PrivateKey)
	require.Equal(t, jwtx.HMAC512, cfg.JWT.Algorithm)
	require.Equal(t, 30*time.Minute, cfg.AccessToken.TokenLife)
	require.True(t, cfg.AccessToken.UseJTI)
	require.True(t, cfg.Exchange.CheckRefreshTokenRequestIP)
	require.Equal(t, 3, cfg.RateLimits.Exchange.RequestsPerWindow)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jwt:
  algorithm: HMAC256
  privateKey: file-secret
  issuer: example
tokenStore:
  driver: redis
  redis:
    addr: localhost:6379
idToken:
  tokenLife: 2m
csrf:
  key: csrf-key
`), 0o600))

	v, err := app.NewViper(path)
	require.NoError(t, err)
	cfg, err := app.LoadConfig(v)
	require.NoError(t, err)

	require.Equal(t, "example", cfg.JWT.Issuer)
	require.Equal(t, app.TokenStoreRedis, cfg.TokenStore.Driver)
	require.Equal(t, "localhost:6379", cfg.TokenStore.Redis.Addr)
	require.Equal(t, "authguard:", cfg.TokenStore.Redis.Prefix)
	require.Equal(t, 2*time.Minute, cfg.IDToken.TokenLife)
	require.Equal(t, "csrf-key", cfg.CSRF.Key)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := app.NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want string
	}{
		{"no private key", map[string]any{}, "jwt.privateKey is required"},
		{"unknown driver", map[string]any{"jwt.privateKey": "s", "tokenStore.driver": "memcached"}, `"memcached"`},
		{"redis without addr", map[string]any{"jwt.privateKey": "s", "tokenStore.driver": "redis"}, "tokenStore.redis.addr"},
		{"zero access life", map[string]any{"jwt.privateKey": "s", "accessToken.tokenLife": "0s"}, "accessToken.tokenLife"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := app.NewViper("")
			require.NoError(t, err)
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err = app.LoadConfig(v)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestStrategyConversion(t *testing.T) {
	s := app.StrategyConfig{
		TokenLife:          time.Minute,
		UseJTI:             true,
		ConsumeJTI:         true,
		IncludeRoles:       true,
		IncludeExternalID:  true,
		IncludePermissions: true,
	}.Strategy()

	require.Equal(t, time.Minute, s.TokenLife)
	require.True(t, s.UseJTI)
	require.True(t, s.ConsumeJTI)
	require.True(t, s.IncludeRoles)
	require.True(t, s.IncludeExternalID)
	require.False(t, s.IncludeVerification)
}
