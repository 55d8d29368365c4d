package service

import (
	"context"
	"errors"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// consume deletes and returns the record behind token when it has the
// given purpose. Records of another purpose are left in place. ok is false
// when no matching record exists or a concurrent caller consumed it first.
func consume(ctx context.Context, tokens store.AccountTokenRepo, token string, purpose domain.Purpose) (rec *domain.AccountToken, ok bool, err error) {
	rec, err = tokens.GetByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if rec.Purpose != purpose {
		return nil, false, nil
	}

	rec, err = tokens.DeleteByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// revoke is consume with a fixed INVALID_TOKEN error for missing records.
func revoke(ctx context.Context, tokens store.AccountTokenRepo, token string, purpose domain.Purpose, msg string) (*domain.AccountToken, error) {
	rec, ok, err := consume(ctx, tokens, token, purpose)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewError(domain.CodeInvalidToken, msg)
	}
	return rec, nil
}
