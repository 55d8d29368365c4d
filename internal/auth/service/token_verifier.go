package service

import (
	"context"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// TokenVerifier checks tokens minted by the providers: signature and
// expiry first, then the JTI when the strategy uses one, then the subject.
type TokenVerifier struct {
	Verifier *jwtx.Verifier
	JTI      *JTIProvider
	UseJTI   bool

	// Encryption, when enabled, decrypts tokens before verifying them.
	Encryption *Encryption
}

func (v *TokenVerifier) Verify(ctx context.Context, token string) (*jwtx.Claims, error) {
	token = strings.TrimSpace(token)

	if v.Encryption.Enabled() && !looksLikeJWS(token) {
		plain, err := v.Encryption.Decrypt(token)
		if err != nil {
			return nil, domain.NewError(domain.CodeGenericAuthFailure, "Invalid JWT")
		}
		token = plain
	}

	claims, err := v.Verifier.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("jwt rejected", "error", err)
		return nil, domain.NewError(domain.CodeGenericAuthFailure, "Invalid JWT")
	}

	if v.UseJTI {
		ok, err := v.JTI.Validate(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewError(domain.CodeInvalidToken, "Invalid JTI")
		}
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, domain.NewError(domain.CodeGenericAuthFailure, "Invalid JWT subject")
	}
	return claims, nil
}

// VerifyAccountID returns the subject of a valid token.
func (v *TokenVerifier) VerifyAccountID(ctx context.Context, token string) (string, error) {
	claims, err := v.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// A compact JWS has exactly two dots; the base64 JWE wrapper has none.
func looksLikeJWS(token string) bool {
	return strings.Count(token, ".") == 2
}
