package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
)

// JTIProvider issues token ids and remembers them until they expire, so a
// verifier can reject tokens whose id it never issued.
type JTIProvider struct {
	Tokens store.AccountTokenRepo
	TTL    time.Duration

	// ConsumeOnValidate deletes the record on validation, making each id
	// valid exactly once.
	ConsumeOnValidate bool

	Now func() time.Time
}

// Next issues and persists a new id.
func (p *JTIProvider) Next(ctx context.Context) (string, error) {
	now := nowFunc(p.Now)
	id := idx.NewAt(now).String()

	rec := &domain.AccountToken{
		ID:        id,
		Token:     id,
		Purpose:   domain.PurposeJTI,
		CreatedAt: now,
	}
	if p.TTL > 0 {
		rec.ExpiresAt = now.Add(p.TTL)
	}
	if err := p.Tokens.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("service: persist jti: %w", err)
	}
	return id, nil
}

// Validate reports whether jti was issued here and has not expired.
func (p *JTIProvider) Validate(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	var (
		rec *domain.AccountToken
		err error
	)
	if p.ConsumeOnValidate {
		rec, err = p.Tokens.DeleteByToken(ctx, jti)
	} else {
		rec, err = p.Tokens.GetByToken(ctx, jti)
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return rec.Purpose == domain.PurposeJTI && !rec.Expired(nowFunc(p.Now)), nil
}
