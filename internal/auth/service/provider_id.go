package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
)

// IDTokenProvider mints identity tokens: subject, issuer and times plus the
// external id. Its refresh token is random and never stored.
type IDTokenProvider struct {
	Generator  *jwtx.Generator
	Encryption *Encryption
	Strategy   Strategy
}

func (p *IDTokenProvider) TokenType() string { return domain.TypeIDToken }

func (p *IDTokenProvider) GenerateForAccount(
	_ context.Context,
	account *domain.Account,
	_ *domain.TokenRestrictions,
	_ *domain.TokenOptions,
) (*domain.Token, error) {
	if !account.Active {
		return nil, domain.NewError(domain.CodeAccountInactive, "Account was deactivated").
			ForEntity(domain.EntityAccount, account.ID)
	}

	ttl := p.Strategy.TokenLife
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := p.Generator.Unsigned(account.ID, ttl)
	claims.ExternalID = account.ExternalID

	signed, err := p.Generator.Sign(claims)
	if err != nil {
		return nil, err
	}
	token, err := p.Encryption.EncryptIfEnabled(signed)
	if err != nil {
		return nil, err
	}

	refresh, err := p.Generator.RandomRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("service: refresh token: %w", err)
	}

	return &domain.Token{
		Type:         domain.TypeIDToken,
		Token:        token,
		RefreshToken: refresh,
		EntityType:   domain.EntityAccount,
		EntityID:     account.ID,
		ValidFor:     int64(ttl / time.Second),
	}, nil
}

func (p *IDTokenProvider) GenerateForApp(context.Context, *domain.App, *domain.TokenRestrictions) (*domain.Token, error) {
	return nil, unsupported("ID tokens cannot be generated for an application")
}

func (p *IDTokenProvider) Delete(context.Context, *domain.AuthRequest) (*domain.Token, error) {
	return nil, unsupported("ID tokens cannot be revoked")
}
