package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// CredentialIssuer hands out the source credentials the verifiers redeem:
// one time passwords, passwordless tokens, TOTP keys and TOTP linkers.
type CredentialIssuer struct {
	Store  store.Store
	Sealer *cryptox.Sealer

	// Issuer names the service in authenticator apps.
	Issuer string
}

// IssueOTP creates a numeric one time password and returns it with the
// "id:password" token that redeems it.
func (i *CredentialIssuer) IssueOTP(ctx context.Context, accountID string, digits int, ttl time.Duration) (*domain.OneTimePassword, string, error) {
	password, err := randomDigits(digits)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	o := &domain.OneTimePassword{
		ID:        idx.NewAt(now).String(),
		AccountID: accountID,
		Password:  password,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := i.Store.OTPs().Create(ctx, o); err != nil {
		return nil, "", fmt.Errorf("service: persist otp: %w", err)
	}
	return o, o.ID + ":" + o.Password, nil
}

// IssuePasswordless creates a single use login token.
func (i *CredentialIssuer) IssuePasswordless(ctx context.Context, accountID string, ttl time.Duration) (string, error) {
	return i.issueRecord(ctx, accountID, domain.PurposePasswordless, ttl)
}

// IssueTOTPLinker creates the linker half of a "linker:code" TOTP token.
func (i *CredentialIssuer) IssueTOTPLinker(ctx context.Context, accountID string, ttl time.Duration) (string, error) {
	return i.issueRecord(ctx, accountID, domain.PurposeTOTPLinker, ttl)
}

// EnrollTOTP generates a new authenticator key for the account, stores it
// sealed and returns it for display as a QR code or otpauth URL.
func (i *CredentialIssuer) EnrollTOTP(ctx context.Context, accountID, accountName string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      i.Issuer,
		AccountName: accountName,
		Period:      totpValidateOpts.Period,
		Digits:      totpValidateOpts.Digits,
		Algorithm:   totpValidateOpts.Algorithm,
	})
	if err != nil {
		return nil, fmt.Errorf("service: generate totp key: %w", err)
	}

	sealed, err := sealTOTPSecret(i.Sealer, key.Secret())
	if err != nil {
		return nil, fmt.Errorf("service: seal totp key: %w", err)
	}

	rec := &domain.TOTPKey{
		ID:        idx.New().String(),
		AccountID: accountID,
		Secret:    sealed,
	}
	if err := i.Store.TOTPKeys().Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("service: persist totp key: %w", err)
	}
	return key, nil
}

func (i *CredentialIssuer) issueRecord(ctx context.Context, accountID string, purpose domain.Purpose, ttl time.Duration) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	rec := &domain.AccountToken{
		ID:        idx.NewAt(now).String(),
		Token:     token,
		AccountID: accountID,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := i.Store.AccountTokens().Save(ctx, rec); err != nil {
		return "", fmt.Errorf("service: persist %s token: %w", purpose, err)
	}
	return token, nil
}

func randomDigits(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	out := make([]byte, n)
	for i := range out {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + d.Int64())
	}
	return string(out), nil
}
