package service

import (
	"context"
	"strings"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/google/uuid"
)

// JWTAPIKeyProvider mints API keys for applications. A zero TokenLife
// yields keys without an exp claim.
type JWTAPIKeyProvider struct {
	Generator *jwtx.Generator
	Strategy  Strategy
}

func (p *JWTAPIKeyProvider) TokenType() string { return domain.TypeJWTAPIKey }

func (p *JWTAPIKeyProvider) GenerateForAccount(context.Context, *domain.Account, *domain.TokenRestrictions, *domain.TokenOptions) (*domain.Token, error) {
	return nil, unsupported("API keys cannot be generated for an account")
}

func (p *JWTAPIKeyProvider) GenerateForApp(_ context.Context, app *domain.App, restrictions *domain.TokenRestrictions) (*domain.Token, error) {
	keyID := strings.ReplaceAll(uuid.NewString(), "-", "")

	claims := p.Generator.Unsigned(app.ID, p.Strategy.TokenLife)
	claims.ID = keyID
	claims.Type = jwtx.TypeAPIKey

	if p.Strategy.IncludeRoles && len(app.Roles) > 0 {
		claims.Roles = app.Roles
	}
	if p.Strategy.IncludePermissions {
		claims.Permissions = permissionsClaim(app.Permissions, restrictions)
	}
	if p.Strategy.IncludeExternalID {
		claims.ExternalID = app.ExternalID
	}

	token, err := p.Generator.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &domain.Token{
		ID:         keyID,
		Type:       domain.TypeJWTAPIKey,
		Token:      token,
		EntityType: domain.EntityApplication,
		EntityID:   app.ID,
		ValidFor:   int64(p.Strategy.TokenLife / time.Second),
	}, nil
}

func (p *JWTAPIKeyProvider) Delete(context.Context, *domain.AuthRequest) (*domain.Token, error) {
	return nil, unsupported("API keys cannot be revoked through the exchange")
}
