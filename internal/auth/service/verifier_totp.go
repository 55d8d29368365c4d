package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpValidateOpts matches common authenticator apps: 30s steps, six
// digits, SHA1 and one step of skew either way.
var totpValidateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTPVerifier checks "linker:code" tokens. The linker is a short lived
// record naming the account whose authenticator produced code.
type TOTPVerifier struct {
	Tokens store.AccountTokenRepo
	Keys   store.TOTPKeyRepo
	Sealer *cryptox.Sealer
	Now    func() time.Time
}

func (v *TOTPVerifier) Verify(ctx context.Context, req *domain.AuthRequest) (string, error) {
	linker, code, ok := strings.Cut(req.Token, ":")
	if !ok || linker == "" || code == "" {
		return "", domain.NewError(domain.CodeInvalidToken, "Token must follow the format linker:totp")
	}

	rec, err := v.Tokens.GetByToken(ctx, linker)
	if errors.Is(err, store.ErrNotFound) || (err == nil && rec.Purpose != domain.PurposeTOTPLinker) {
		return "", domain.NewError(domain.CodeInvalidToken, "Invalid or expired token")
	}
	if err != nil {
		return "", err
	}

	now := nowFunc(v.Now)
	if rec.Expired(now) {
		return "", domain.NewError(domain.CodeExpiredToken, "TOTP linker token has expired")
	}

	key, err := v.Keys.GetByAccountID(ctx, rec.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		return "", domain.NewError(domain.CodeTOTPNoKey, "Account has no active TOTP keys").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	if err != nil {
		return "", err
	}

	secret, err := openTOTPSecret(v.Sealer, key.Secret)
	if err != nil {
		slogx.FromContext(ctx).Error("unreadable totp key", "key_id", key.ID, "error", err)
		return "", domain.NewError(domain.CodeTOTPNoKey, "Account has no usable TOTP keys").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}

	valid, err := totp.ValidateCustom(code, secret, now, totpValidateOpts)
	if err != nil || !valid {
		return "", domain.NewError(domain.CodeTOTPInvalid, "TOTP is incorrect").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	return rec.AccountID, nil
}

func sealTOTPSecret(s *cryptox.Sealer, secret string) (string, error) {
	sealed, err := s.Seal([]byte(secret))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func openTOTPSecret(s *cryptox.Sealer, stored string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decode sealed secret: %w", err)
	}
	plain, err := s.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
