package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/exchange"
	authhttp "github.com/AuthGuard/AuthGuard-sub001/internal/auth/http"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store/drivers/sqlite"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/csrfx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testIssuer = "authguard-http-test"

type server struct {
	url    string
	client *authsdk.Client
	store  *sqlite.Store
}

type options struct {
	csrf   *csrfx.CSRF
	limits httpx.RateLimits
	broken authhttp.Pinger
}

func newServer(t *testing.T, opts options) *server {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	alg, err := jwtx.ParseAlgorithm(jwtx.HMAC256, nil, []byte("http-test-secret-http-test-secret"))
	require.NoError(t, err)
	gen := jwtx.NewGenerator(testIssuer, alg)

	access := &service.AccessTokenProvider{
		Generator: gen,
		Tokens:    s.AccountTokens(),
		Strategy: service.Strategy{
			TokenLife:          5 * time.Minute,
			RefreshTokenLife:   time.Hour,
			IncludePermissions: true,
			IncludeRoles:       true,
		},
	}
	id := &service.IDTokenProvider{Generator: gen}
	deps := exchange.Dependencies{
		Store:             s,
		Basic:             &service.BasicAuthenticator{Credentials: s.Credentials(), Accounts: s.Accounts(), Hasher: cryptox.PasswordHasher{}},
		OTP:               &service.OTPVerifier{OTPs: s.OTPs()},
		Passwordless:      &service.PasswordlessVerifier{Tokens: s.AccountTokens()},
		AuthorizationCode: &service.AuthorizationCodeVerifier{Tokens: s.AccountTokens()},
		Access:            access,
		ID:                id,
		OIDC:              &service.OIDCProvider{Access: access, ID: id},
		AuthCode:          &service.AuthorizationCodeProvider{Tokens: s.AccountTokens()},
	}
	reg, err := exchange.NewRegistry(deps.Providers(), exchange.Standard(deps)...)
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	metrics, err := exchange.NewMetrics(promReg)
	require.NoError(t, err)
	reg.Instrument(metrics, nil)

	router := authhttp.NewRouter(authhttp.Config{
		Registry:   reg,
		Verifier:   &service.TokenVerifier{Verifier: jwtx.NewVerifier(alg, testIssuer)},
		Signing:    alg,
		Store:      s,
		TokenStore: opts.broken,
		CSRF:       opts.csrf,
		RateLimits: opts.limits,
		Gatherer:   promReg,
		Version:    "test",
		Logger:     slogx.Discard(),
	})
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &server{url: srv.URL, client: authsdk.NewClient(srv.URL, "web-app"), store: s}
}

func (s *server) account(t *testing.T, identifier, password string) string {
	t.Helper()
	ctx := context.Background()

	accountID := idx.New().String()
	require.NoError(t, s.store.Accounts().Create(ctx, &domain.Account{
		ID:          accountID,
		Domain:      "main",
		Active:      true,
		Roles:       []string{"user"},
		Permissions: []domain.Permission{{Group: "docs", Name: "read"}},
	}))

	hash, err := cryptox.PasswordHasher{}.Hash(password)
	require.NoError(t, err)
	require.NoError(t, s.store.Credentials().Create(ctx, &domain.Credentials{
		ID:           idx.New().String(),
		AccountID:    accountID,
		Domain:       "main",
		Identifier:   identifier,
		PasswordHash: hash,
		Active:       true,
	}))
	return accountID
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestExchangeIntrospectRefreshRevoke(t *testing.T) {
	s := newServer(t, options{})
	accountID := s.account(t, "alice", "hunter2")
	ctx := t.Context()

	tok, err := s.client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "alice",
		Password:   "hunter2",
		Domain:     "main",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TypeAccessToken, tok.Type)
	require.Equal(t, accountID, tok.EntityID)
	require.Equal(t, "ACCOUNT", tok.EntityType)
	require.Equal(t, int64(300), tok.ValidFor)
	require.NotEmpty(t, tok.RefreshToken)

	info, err := s.client.Introspect(ctx, tok.Token)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, accountID, info.Sub)
	require.Equal(t, testIssuer, info.Iss)
	require.Equal(t, []string{"docs:read"}, info.Permissions)
	require.Equal(t, domain.TypeBasic, info.Source)

	rotated, err := s.client.Exchange(ctx, domain.TypeRefresh, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Token: tok.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, tok.RefreshToken, rotated.RefreshToken)

	// the old refresh token is spent
	_, err = s.client.Exchange(ctx, domain.TypeRefresh, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Token: tok.RefreshToken,
	})
	requireAPIError(t, err, http.StatusUnauthorized, domain.CodeInvalidToken)

	require.NoError(t, s.client.Revoke(ctx, domain.TypeAccessToken, rotated.RefreshToken))
	err = s.client.Revoke(ctx, domain.TypeAccessToken, rotated.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, domain.CodeInvalidToken)
}

func TestExchangeErrors(t *testing.T) {
	s := newServer(t, options{})
	s.account(t, "bob", "correct")
	ctx := t.Context()

	t.Run("wrong password names the account", func(t *testing.T) {
		_, err := s.client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
			Identifier: "bob", Password: "wrong", Domain: "main",
		})
		requireAPIError(t, err, http.StatusUnauthorized, domain.CodePasswordsDoNotMatch)

		var apiErr *authsdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "ACCOUNT", apiErr.EntityType)
		require.NotEmpty(t, apiErr.EntityID)
	})

	t.Run("unknown pair", func(t *testing.T) {
		_, err := s.client.Exchange(ctx, domain.TypeIDToken, domain.TypeBasic, authsdk.ExchangeRequest{Token: "x"})
		requireAPIError(t, err, http.StatusBadRequest, domain.CodeUnknownExchange)
	})

	t.Run("unknown revoke type", func(t *testing.T) {
		err := s.client.Revoke(ctx, "nope", "x")
		requireAPIError(t, err, http.StatusBadRequest, domain.CodeUnknownExchange)
	})

	t.Run("revoke type without revocation", func(t *testing.T) {
		err := s.client.Revoke(ctx, domain.TypeIDToken, "x")
		requireAPIError(t, err, http.StatusBadRequest, domain.CodeUnsupportedOperation)
	})

	t.Run("missing query", func(t *testing.T) {
		resp, err := http.Post(s.url+"/v1/exchange?from=basic", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown body field", func(t *testing.T) {
		resp, err := http.Post(s.url+"/v1/exchange?from=basic&to=accessToken", "application/json", strings.NewReader(`{"user":"bob"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthorizationCodeWithPKCE(t *testing.T) {
	s := newServer(t, options{})
	s.account(t, "carol", "pw")
	ctx := t.Context()

	const verifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	const challenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	code, err := s.client.Exchange(ctx, domain.TypeBasic, domain.TypeAuthorizationCode, authsdk.ExchangeRequest{
		Identifier: "carol", Password: "pw", Domain: "main",
		CodeChallenge: challenge, CodeChallengeMethod: domain.PKCEMethodS256,
	})
	require.NoError(t, err)
	require.NotEmpty(t, code.Token)

	tok, err := s.client.Exchange(ctx, domain.TypeAuthorizationCode, domain.TypeOIDC, authsdk.ExchangeRequest{
		Token: code.Token, CodeVerifier: verifier,
	})
	require.NoError(t, err)
	require.NotNil(t, tok.OIDC)
	require.NotEmpty(t, tok.OIDC.AccessToken)
	require.NotEmpty(t, tok.OIDC.IDToken)
}

func TestIntrospectRequiresBearer(t *testing.T) {
	s := newServer(t, options{})

	_, err := s.client.Introspect(t.Context(), "not-a-jwt")
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCSRFProtection(t *testing.T) {
	s := newServer(t, options{csrf: csrfx.New([]byte("http-test-csrf-key"))})
	s.account(t, "dave", "pw")
	ctx := t.Context()
	req := authsdk.ExchangeRequest{Identifier: "dave", Password: "pw", Domain: "main"}

	resp, err := http.Post(s.url+"/v1/exchange?from=basic&to=accessToken", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	csrf, err := s.client.FetchCSRFToken(ctx)
	require.NoError(t, err)
	require.Equal(t, 300, csrf.ExpiresIn)

	_, err = s.client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, req)
	require.NoError(t, err)

	// a token issued to one client is useless to another
	other := authsdk.NewClient(s.url, "other-app")
	other.CSRFToken = csrf.Token
	_, err = other.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, req)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Equal(t, "csrf_failed", apiErr.Code)
}

func TestCSRFEndpointDisabled(t *testing.T) {
	s := newServer(t, options{})

	_, err := s.client.FetchCSRFToken(t.Context())
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestExchangeRateLimit(t *testing.T) {
	s := newServer(t, options{limits: httpx.RateLimits{
		Exchange: httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2},
	}})
	ctx := t.Context()
	req := authsdk.ExchangeRequest{Identifier: "nobody", Password: "pw", Domain: "main"}

	for range 2 {
		_, err := s.client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, req)
		requireAPIError(t, err, http.StatusUnauthorized, domain.CodeCredentialsDoesNotExist)
	}
	_, err := s.client.Exchange(ctx, domain.TypeBasic, domain.TypeAccessToken, req)
	requireAPIError(t, err, http.StatusTooManyRequests, "rate_limit_exceeded")

	// a different source type has its own bucket
	_, err = s.client.Exchange(ctx, domain.TypeOTP, domain.TypeAccessToken, authsdk.ExchangeRequest{Token: "x"})
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.NotEqual(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s := newServer(t, options{})

		live, err := s.client.Live(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", live.Status)
		require.Equal(t, "test", live.Version)

		ready, err := s.client.Ready(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", ready.Checks.Database)
		require.Equal(t, "ok", ready.Checks.TokenStore)
	})

	t.Run("degraded token store", func(t *testing.T) {
		s := newServer(t, options{broken: failingPinger{}})

		_, err := s.client.Ready(t.Context())
		var apiErr *authsdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	})
}

func TestJWKSForHMACIsEmpty(t *testing.T) {
	s := newServer(t, options{})

	set, err := s.client.JWKS(t.Context())
	require.NoError(t, err)
	require.Empty(t, set.Keys)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, options{})
	_, _ = s.client.Exchange(t.Context(), domain.TypeBasic, domain.TypeAccessToken, authsdk.ExchangeRequest{
		Identifier: "ghost", Password: "pw", Domain: "main",
	})

	resp, err := http.Get(s.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(body),
		`authguard_exchange_attempts_total{from="basic",result="CREDENTIALS_DOES_NOT_EXIST",to="accessToken"} 1`)
}
