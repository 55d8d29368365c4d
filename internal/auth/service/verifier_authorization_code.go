package service

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// AuthorizationCodeVerifier redeems authorization codes. The code is
// deleted as it is read, so it can be redeemed once.
type AuthorizationCodeVerifier struct {
	Tokens store.AccountTokenRepo
	Now    func() time.Time
}

func (v *AuthorizationCodeVerifier) VerifyRecord(ctx context.Context, req *domain.AuthRequest) (*domain.AccountToken, error) {
	rec, err := revoke(ctx, v.Tokens, req.Token, domain.PurposeAuthorizationCode, "Invalid authorization code")
	if err != nil {
		return nil, err
	}
	if rec.Expired(nowFunc(v.Now)) {
		return nil, domain.NewError(domain.CodeExpiredToken, "The authorization code has expired").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	return rec, nil
}

func (v *AuthorizationCodeVerifier) Verify(ctx context.Context, req *domain.AuthRequest) (string, error) {
	rec, err := v.VerifyRecord(ctx, req)
	if err != nil {
		return "", err
	}
	return rec.AccountID, nil
}
