package service

import (
	"context"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

// OIDCProvider composes the access and id token providers into one
// response carrying both tokens and the access token's refresh token.
type OIDCProvider struct {
	Access *AccessTokenProvider
	ID     *IDTokenProvider
}

func (p *OIDCProvider) TokenType() string { return domain.TypeOIDC }

func (p *OIDCProvider) GenerateForAccount(
	ctx context.Context,
	account *domain.Account,
	restrictions *domain.TokenRestrictions,
	opts *domain.TokenOptions,
) (*domain.Token, error) {
	if opts == nil {
		opts = &domain.TokenOptions{}
	}

	access, err := p.Access.GenerateForAccount(ctx, account, restrictions, opts)
	if err != nil {
		return nil, err
	}
	id, err := p.ID.GenerateForAccount(ctx, account, restrictions, opts)
	if err != nil {
		return nil, err
	}

	return &domain.Token{
		ID:   access.ID,
		Type: domain.TypeOIDC,
		OIDC: &domain.OIDCTokens{
			AccessToken:  access.Token,
			IDToken:      id.Token,
			RefreshToken: access.RefreshToken,
		},
		RefreshToken:    access.RefreshToken,
		EntityType:      domain.EntityAccount,
		EntityID:        account.ID,
		ValidFor:        access.ValidFor,
		TrackingSession: opts.TrackingSession,
	}, nil
}

func (p *OIDCProvider) GenerateForApp(context.Context, *domain.App, *domain.TokenRestrictions) (*domain.Token, error) {
	return nil, unsupported("OIDC tokens cannot be generated for an application")
}

// Delete revokes the refresh token shared with the access provider.
func (p *OIDCProvider) Delete(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	tok, err := p.Access.Delete(ctx, req)
	if err != nil {
		return nil, err
	}
	tok.Type = domain.TypeOIDC
	return tok, nil
}
