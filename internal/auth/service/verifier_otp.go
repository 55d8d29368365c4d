package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// OTPVerifier checks "passwordId:password" tokens against issued one time
// passwords. A matching password is consumed; a wrong one is not.
type OTPVerifier struct {
	OTPs store.OTPRepo
	Now  func() time.Time
}

func (v *OTPVerifier) Verify(ctx context.Context, req *domain.AuthRequest) (string, error) {
	id, password, ok := strings.Cut(req.Token, ":")
	if !ok || id == "" || strings.Contains(password, ":") {
		return "", domain.NewError(domain.CodeInvalidAuthorizationFormat, "Invalid OTP token format")
	}

	generated, err := v.OTPs.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", domain.NewError(domain.CodeInvalidToken, "Invalid OTP ID")
	}
	if err != nil {
		return "", err
	}

	if generated.ExpiresAt.Before(nowFunc(v.Now)) {
		return "", domain.NewError(domain.CodeExpiredToken, "OTP has expired").
			ForEntity(domain.EntityAccount, generated.AccountID)
	}
	if !constantEqual(generated.Password, password) {
		return "", domain.NewError(domain.CodePasswordsDoNotMatch, "OTP values did not match").
			ForEntity(domain.EntityAccount, generated.AccountID)
	}

	if _, err := v.OTPs.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.NewError(domain.CodeInvalidToken, "OTP was already used").
				ForEntity(domain.EntityAccount, generated.AccountID)
		}
		return "", err
	}
	return generated.AccountID, nil
}
