package service

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// PasswordlessVerifier redeems passwordless login tokens. Each token is
// consumed on first use, whether or not it has expired.
type PasswordlessVerifier struct {
	Tokens store.AccountTokenRepo
	Now    func() time.Time
}

func (v *PasswordlessVerifier) Verify(ctx context.Context, req *domain.AuthRequest) (string, error) {
	rec, err := revoke(ctx, v.Tokens, req.Token, domain.PurposePasswordless, "Passwordless token doesn't exist")
	if err != nil {
		return "", err
	}
	if rec.Expired(nowFunc(v.Now)) {
		return "", domain.NewError(domain.CodeExpiredToken, "Expired passwordless token").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	return rec.AccountID, nil
}
