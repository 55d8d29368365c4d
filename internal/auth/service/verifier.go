package service

import (
	"context"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

// Verifier authenticates the source credential of an exchange and returns
// the id of the account it belongs to.
type Verifier interface {
	Verify(ctx context.Context, req *domain.AuthRequest) (accountID string, err error)
}

// RecordVerifier is a Verifier backed by a token record the caller needs,
// e.g. for the PKCE challenge or restrictions stored with it.
type RecordVerifier interface {
	VerifyRecord(ctx context.Context, req *domain.AuthRequest) (*domain.AccountToken, error)
}
