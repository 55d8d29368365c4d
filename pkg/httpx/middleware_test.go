package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/csrfx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(ctx context.Context, token string) (*jwtx.Claims, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (*jwtx.Claims, error) {
	return f(ctx, token)
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	v := verifierFunc(func(_ context.Context, token string) (*jwtx.Claims, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		return &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "acct-1"},
			Permissions:      []string{"tokens:read"},
		}, nil
	})

	var (
		gotAccount string
		gotToken   string
		gotClaims  *jwtx.Claims
	)
	h := httpx.AuthnMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccount = httpx.AccountIDFromContext(r.Context())
		gotToken = httpx.TokenFromContext(r.Context())
		gotClaims = httpx.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "acct-1", gotAccount)
		require.Equal(t, "good", gotToken)
		require.Equal(t, []string{"tokens:read"}, gotClaims.Permissions)
	})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"empty token":  "Bearer   ",
		"rejected":     "Bearer bad",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer "))
		})
	}
}

func TestContextHelpersOutsideAuthn(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, httpx.AccountIDFromContext(ctx))
	require.Empty(t, httpx.TokenFromContext(ctx))
	require.Nil(t, httpx.ClaimsFromContext(ctx))
}

func TestCSRFMiddleware(t *testing.T) {
	c := csrfx.New([]byte("csrf-test-key-0123456789"))
	h := httpx.CSRFMiddleware(c, httpx.HeaderKeyExtractor("X-Client-ID"))(okHandler())

	token, err := c.Generate("web-app")
	require.NoError(t, err)

	do := func(method, client, csrf string) int {
		req := httptest.NewRequest(method, "/v1/exchange", nil)
		if client != "" {
			req.Header.Set("X-Client-ID", client)
		}
		if csrf != "" {
			req.Header.Set(httpx.CSRFHeader, csrf)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do(http.MethodPost, "web-app", token))
	require.Equal(t, http.StatusOK, do(http.MethodGet, "", ""))
	require.Equal(t, http.StatusForbidden, do(http.MethodPost, "web-app", ""))
	require.Equal(t, http.StatusForbidden, do(http.MethodPost, "other-app", token))
	require.Equal(t, http.StatusForbidden, do(http.MethodPost, "", token))
	require.Equal(t, http.StatusForbidden, do(http.MethodPost, "web-app", "garbage"))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, httpx.DecodeJSON(req, 1024, &v))
	require.Equal(t, "x", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	require.Error(t, httpx.DecodeJSON(req, 1024, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 100)+`"}`))
	require.Error(t, httpx.DecodeJSON(req, 16, &v))
}
