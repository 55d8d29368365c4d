package httpx

import (
	"context"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyAccountID ctxKey = "account_id"
	CtxKeyClaims    ctxKey = "claims"
	CtxKeyToken     ctxKey = "token"
)

func contextWithAuth(ctx context.Context, raw string, c *jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyAccountID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

// AccountIDFromContext returns the subject of the authenticated token.
func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyAccountID).(string)
	return id
}

// ClaimsFromContext returns the verified claims, or nil outside AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) *jwtx.Claims {
	c, _ := ctx.Value(CtxKeyClaims).(*jwtx.Claims)
	return c
}

// TokenFromContext returns the bearer token exactly as presented.
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(CtxKeyToken).(string)
	return t
}
