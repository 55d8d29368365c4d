package exchange

import (
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// Dependencies are the verifiers and providers the standard exchanges are
// assembled from.
type Dependencies struct {
	Store store.Store

	Basic             *service.BasicAuthenticator
	OTP               *service.OTPVerifier
	TOTP              *service.TOTPVerifier
	Passwordless      *service.PasswordlessVerifier
	AuthorizationCode *service.AuthorizationCodeVerifier

	Access   *service.AccessTokenProvider
	ID       *service.IDTokenProvider
	OIDC     *service.OIDCProvider
	AuthCode *service.AuthorizationCodeProvider
	APIKey   *service.JWTAPIKeyProvider

	Refresh RefreshConfig
}

// Providers lists the configured providers for revocation lookups.
func (d Dependencies) Providers() []service.Provider {
	var out []service.Provider
	if d.Access != nil {
		out = append(out, d.Access)
	}
	if d.ID != nil {
		out = append(out, d.ID)
	}
	if d.OIDC != nil {
		out = append(out, d.OIDC)
	}
	if d.AuthCode != nil {
		out = append(out, d.AuthCode)
	}
	if d.APIKey != nil {
		out = append(out, d.APIKey)
	}
	return out
}

// Standard builds every built-in exchange.
func Standard(d Dependencies) []Exchange {
	accounts := d.Store.Accounts()

	return []Exchange{
		NewBasic(d.Basic, d.Access),
		NewBasic(d.Basic, d.ID),
		NewBasic(d.Basic, d.OIDC),
		NewBasic(d.Basic, d.AuthCode),

		NewVerified(domain.TypeOTP, d.OTP, accounts, d.Access),
		NewVerified(domain.TypeOTP, d.OTP, accounts, d.OIDC),
		NewVerified(domain.TypeOTP, d.OTP, accounts, d.AuthCode),

		NewVerified(domain.TypeTOTP, d.TOTP, accounts, d.Access),
		NewVerified(domain.TypeTOTP, d.TOTP, accounts, d.OIDC),

		NewVerified(domain.TypePasswordless, d.Passwordless, accounts, d.Access),
		NewVerified(domain.TypePasswordless, d.Passwordless, accounts, d.OIDC),

		NewAuthorizationCode(d.AuthorizationCode, accounts, d.Access),
		NewAuthorizationCode(d.AuthorizationCode, accounts, d.OIDC),

		NewRefresh(d.Store.AccountTokens(), accounts, d.Access, d.Refresh),
	}
}
