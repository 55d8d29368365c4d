// Package exchange converts one credential or token type into another. A
// Registry dispatches each (from, to) pair to the Exchange registered for
// it; exchanges authenticate the source through a service verifier and
// mint the target through a service provider.
package exchange

import (
	"context"
	"errors"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// Key names an exchange by its source and target token types.
type Key struct {
	From string
	To   string
}

func (k Key) String() string { return k.From + " to " + k.To }

// Exchange performs one conversion.
type Exchange interface {
	Key() Key
	Exchange(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error)
}

// verifiedExchange authenticates the source with a Verifier, loads the
// account and mints through provider.
type verifiedExchange struct {
	key      Key
	verifier service.Verifier
	accounts store.AccountRepo
	provider service.Provider
}

// NewVerified builds an exchange from an account-resolving verifier. Used
// for otp, totp and passwordless sources.
func NewVerified(from string, verifier service.Verifier, accounts store.AccountRepo, provider service.Provider) Exchange {
	return &verifiedExchange{
		key:      Key{From: from, To: provider.TokenType()},
		verifier: verifier,
		accounts: accounts,
		provider: provider,
	}
}

func (e *verifiedExchange) Key() Key { return e.key }

func (e *verifiedExchange) Exchange(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	accountID, err := e.verifier.Verify(ctx, req)
	if err != nil {
		return nil, err
	}

	account, err := loadAccount(ctx, e.accounts, accountID)
	if err != nil {
		return nil, err
	}
	return e.provider.GenerateForAccount(ctx, account, req.Restrictions, req.Options(e.key.From))
}

// basicExchange skips the second account lookup: the authenticator already
// returns the active account.
type basicExchange struct {
	key      Key
	auth     *service.BasicAuthenticator
	provider service.Provider
}

func NewBasic(auth *service.BasicAuthenticator, provider service.Provider) Exchange {
	return &basicExchange{
		key:      Key{From: domain.TypeBasic, To: provider.TokenType()},
		auth:     auth,
		provider: provider,
	}
}

func (e *basicExchange) Key() Key { return e.key }

func (e *basicExchange) Exchange(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	account, err := e.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.provider.GenerateForAccount(ctx, account, req.Restrictions, req.Options(domain.TypeBasic))
}

// authorizationCodeExchange redeems a code, checks its PKCE binding and
// mints with the restrictions stored alongside the code.
type authorizationCodeExchange struct {
	key      Key
	verifier service.RecordVerifier
	accounts store.AccountRepo
	provider service.Provider
}

func NewAuthorizationCode(verifier service.RecordVerifier, accounts store.AccountRepo, provider service.Provider) Exchange {
	return &authorizationCodeExchange{
		key:      Key{From: domain.TypeAuthorizationCode, To: provider.TokenType()},
		verifier: verifier,
		accounts: accounts,
		provider: provider,
	}
}

func (e *authorizationCodeExchange) Key() Key { return e.key }

func (e *authorizationCodeExchange) Exchange(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	rec, err := e.verifier.VerifyRecord(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := service.VerifyPKCE(rec, req); err != nil {
		return nil, err
	}

	account, err := loadAccount(ctx, e.accounts, rec.AccountID)
	if err != nil {
		return nil, err
	}

	opts := req.Options(domain.TypeAuthorizationCode)
	if opts.TrackingSession == "" {
		opts.TrackingSession = rec.Session.TrackingSession
	}
	return e.provider.GenerateForAccount(ctx, account, rec.Restrictions, opts)
}

func loadAccount(ctx context.Context, accounts store.AccountRepo, id string) (*domain.Account, error) {
	account, err := accounts.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NewError(domain.CodeGenericAuthFailure, "Failed to retrieve account").
			ForEntity(domain.EntityAccount, id)
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}
