package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// AccessTokenProvider mints signed access tokens for accounts together with
// a persisted, single use refresh token.
type AccessTokenProvider struct {
	Generator  *jwtx.Generator
	Encryption *Encryption
	JTI        *JTIProvider
	Tokens     store.AccountTokenRepo
	Strategy   Strategy
}

func (p *AccessTokenProvider) TokenType() string { return domain.TypeAccessToken }

func (p *AccessTokenProvider) tokenTTL() time.Duration {
	if p.Strategy.TokenLife > 0 {
		return p.Strategy.TokenLife
	}
	return jwtx.DefaultAccessTokenTTL
}

func (p *AccessTokenProvider) refreshTTL() time.Duration {
	if p.Strategy.RefreshTokenLife > 0 {
		return p.Strategy.RefreshTokenLife
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (p *AccessTokenProvider) GenerateForAccount(
	ctx context.Context,
	account *domain.Account,
	restrictions *domain.TokenRestrictions,
	opts *domain.TokenOptions,
) (*domain.Token, error) {
	if !account.Active {
		return nil, domain.NewError(domain.CodeAccountInactive, "Account was deactivated").
			ForEntity(domain.EntityAccount, account.ID)
	}
	if opts == nil {
		opts = &domain.TokenOptions{}
	}

	ttl := p.tokenTTL()
	claims := p.Generator.Unsigned(account.ID, ttl)

	if p.Strategy.UseJTI {
		jti, err := p.JTI.Next(ctx)
		if err != nil {
			return nil, err
		}
		claims.ID = jti
	}
	if p.Strategy.IncludePermissions {
		claims.Permissions = permissionsClaim(account.Permissions, restrictions)
	}
	if p.Strategy.IncludeExternalID {
		claims.ExternalID = account.ExternalID
	}
	if p.Strategy.IncludeRoles && len(account.Roles) > 0 {
		claims.Roles = account.Roles
	}
	if p.Strategy.IncludeVerification {
		if account.Email != nil {
			claims.EmailVerified = &account.Email.Verified
		}
		if account.Phone != nil {
			claims.PhoneVerified = &account.Phone.Verified
		}
	}
	claims.SID = opts.TrackingSession
	claims.Source = opts.Source

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
	now := time.Now().UTC()
	rec := &domain.AccountToken{
		ID:           idx.NewAt(now).String(),
		Token:        refresh,
		AccountID:    account.ID,
		Purpose:      domain.PurposeRefreshToken,
		Restrictions: restrictions,
		Session:      domain.SessionFromOptions(opts),
		ExpiresAt:    now.Add(p.refreshTTL()),
		CreatedAt:    now,
	}
	if err := p.Tokens.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("service: persist refresh token: %w", err)
	}

	slogx.FromContext(ctx).Debug("access token issued",
		"account_id", account.ID,
		"jti", claims.ID,
		"refresh_fp", cryptox.FingerprintToken(refresh),
	)

	return &domain.Token{
		ID:              claims.ID,
		Type:            domain.TypeAccessToken,
		Token:           token,
		RefreshToken:    refresh,
		EntityType:      domain.EntityAccount,
		EntityID:        account.ID,
		ValidFor:        int64(ttl / time.Second),
		TrackingSession: opts.TrackingSession,
	}, nil
}

func (p *AccessTokenProvider) GenerateForApp(context.Context, *domain.App, *domain.TokenRestrictions) (*domain.Token, error) {
	return nil, unsupported("Access tokens cannot be generated for an application")
}

// Delete revokes a refresh token. The token must belong to a refresh record.
func (p *AccessTokenProvider) Delete(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	rec, err := revoke(ctx, p.Tokens, req.Token, domain.PurposeRefreshToken, "Invalid refresh token")
	if err != nil {
		return nil, err
	}
	return &domain.Token{
		Type:         domain.TypeAccessToken,
		EntityType:   domain.EntityAccount,
		EntityID:     rec.AccountID,
		RefreshToken: req.Token,
	}, nil
}
