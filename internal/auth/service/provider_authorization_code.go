package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
)

// DefaultAuthorizationCodeTTL applies when the strategy sets no lifetime.
const DefaultAuthorizationCodeTTL = 5 * time.Minute

// AuthorizationCodeProvider issues opaque, single use authorization codes,
// optionally bound to a PKCE challenge.
type AuthorizationCodeProvider struct {
	Tokens   store.AccountTokenRepo
	Strategy Strategy
}

func (p *AuthorizationCodeProvider) TokenType() string { return domain.TypeAuthorizationCode }

func (p *AuthorizationCodeProvider) GenerateForAccount(
	ctx context.Context,
	account *domain.Account,
	restrictions *domain.TokenRestrictions,
	opts *domain.TokenOptions,
) (*domain.Token, error) {
	var pkce *domain.PKCEChallenge
	if opts != nil {
		if req := opts.ExtraParameters.AuthCodeParams(); req != nil {
			c, err := domain.NewPKCEChallenge(req.CodeChallenge, req.CodeChallengeMethod)
			if err != nil {
				return nil, err
			}
			pkce = c
		}
	}

	ttl := p.Strategy.TokenLife
	if ttl <= 0 {
		ttl = DefaultAuthorizationCodeTTL
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("service: authorization code: %w", err)
	}

	now := time.Now().UTC()
	rec := &domain.AccountToken{
		ID:           idx.NewAt(now).String(),
		Token:        code,
		AccountID:    account.ID,
		Purpose:      domain.PurposeAuthorizationCode,
		Restrictions: restrictions,
		Session:      domain.SessionFromOptions(opts),
		PKCE:         pkce,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
	}
	if err := p.Tokens.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("service: persist authorization code: %w", err)
	}

	tok := &domain.Token{
		ID:         rec.ID,
		Type:       domain.TypeAuthorizationCode,
		Token:      code,
		EntityType: domain.EntityAccount,
		EntityID:   account.ID,
		ValidFor:   int64(ttl / time.Second),
	}
	if opts != nil {
		tok.TrackingSession = opts.TrackingSession
	}
	return tok, nil
}

func (p *AuthorizationCodeProvider) GenerateForApp(context.Context, *domain.App, *domain.TokenRestrictions) (*domain.Token, error) {
	return nil, unsupported("Authorization codes cannot be generated for an application")
}

// Delete revokes an unused authorization code.
func (p *AuthorizationCodeProvider) Delete(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	rec, err := revoke(ctx, p.Tokens, req.Token, domain.PurposeAuthorizationCode, "Invalid authorization code")
	if err != nil {
		return nil, err
	}
	return &domain.Token{
		Type:       domain.TypeAuthorizationCode,
		EntityType: domain.EntityAccount,
		EntityID:   rec.AccountID,
	}, nil
}
