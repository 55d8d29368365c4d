// Package service holds the token providers, credential verifiers and the
// supporting JWT machinery the exchange registry is built from.
package service

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

// Provider mints one token type. Providers that do not support a principal
// kind return an error matching domain.ErrUnsupportedOperation.
type Provider interface {
	TokenType() string
	GenerateForAccount(ctx context.Context, account *domain.Account, restrictions *domain.TokenRestrictions, opts *domain.TokenOptions) (*domain.Token, error)
	GenerateForApp(ctx context.Context, app *domain.App, restrictions *domain.TokenRestrictions) (*domain.Token, error)
	Delete(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error)
}

// Strategy configures what a provider puts in its tokens and how long they
// live.
type Strategy struct {
	TokenLife        time.Duration
	RefreshTokenLife time.Duration

	UseJTI bool
	// ConsumeJTI makes a JTI single use: validating it deletes it.
	ConsumeJTI bool

	IncludePermissions  bool
	IncludeExternalID   bool
	IncludeRoles        bool
	IncludeVerification bool
}

func unsupported(msg string) error {
	return domain.NewError(domain.CodeUnsupportedOperation, msg)
}

// permissionsClaim renders perms as "group:name", keeping only those listed
// in restrictions when restrictions name any. Account order is preserved.
func permissionsClaim(perms []domain.Permission, restrictions *domain.TokenRestrictions) []string {
	var allowed map[string]struct{}
	if restrictions != nil && len(restrictions.Permissions) > 0 {
		allowed = make(map[string]struct{}, len(restrictions.Permissions))
		for _, p := range restrictions.Permissions {
			allowed[p] = struct{}{}
		}
	}

	out := make([]string, 0, len(perms))
	for _, p := range perms {
		s := p.String()
		if allowed != nil {
			if _, ok := allowed[s]; !ok {
				continue
			}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func nowFunc(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
