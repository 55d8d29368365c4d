package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// BasicAuthenticator checks identifier and password credentials. The
// credential arrives either as a base64 "identifier:password" token or as
// separate Identifier and Password fields.
type BasicAuthenticator struct {
	Credentials store.CredentialRepo
	Accounts    store.AccountRepo
	Hasher      cryptox.PasswordHasher
}

// Authenticate returns the active account behind the credential.
func (a *BasicAuthenticator) Authenticate(ctx context.Context, req *domain.AuthRequest) (*domain.Account, error) {
	identifier, password, err := basicCredentials(req)
	if err != nil {
		return nil, err
	}

	creds, err := a.Credentials.GetByIdentifier(ctx, req.Domain, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NewError(domain.CodeCredentialsDoesNotExist, "Identifier does not exist")
	}
	if err != nil {
		return nil, err
	}

	if err := a.Hasher.Verify(password, creds.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash is unreadable", "credentials_id", creds.ID, "error", err)
		}
		return nil, domain.NewError(domain.CodePasswordsDoNotMatch, "Passwords do not match").
			ForEntity(domain.EntityAccount, creds.AccountID)
	}

	if !creds.Active {
		return nil, domain.NewError(domain.CodeInactiveIdentifier, "Identifier is not active").
			ForEntity(domain.EntityAccount, creds.AccountID)
	}

	account, err := a.Accounts.GetByID(ctx, creds.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NewError(domain.CodeAccountDoesNotExist, "Account does not exist").
			ForEntity(domain.EntityAccount, creds.AccountID)
	}
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, domain.NewError(domain.CodeAccountInactive, "Account was deactivated").
			ForEntity(domain.EntityAccount, account.ID)
	}
	return account, nil
}

// Verify implements Verifier.
func (a *BasicAuthenticator) Verify(ctx context.Context, req *domain.AuthRequest) (string, error) {
	account, err := a.Authenticate(ctx, req)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

func basicCredentials(req *domain.AuthRequest) (string, string, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		if req.Identifier == "" || req.Password == "" {
			return "", "", invalidBasicFormat()
		}
		return req.Identifier, req.Password, nil
	}

	if scheme, rest, ok := strings.Cut(token, " "); ok {
		if !strings.EqualFold(scheme, "Basic") {
			return "", "", invalidBasicFormat()
		}
		token = strings.TrimSpace(rest)
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", invalidBasicFormat()
	}
	identifier, password, ok := strings.Cut(string(raw), ":")
	if !ok || identifier == "" || password == "" {
		return "", "", invalidBasicFormat()
	}
	return identifier, password, nil
}

func invalidBasicFormat() error {
	return domain.NewError(domain.CodeInvalidAuthorizationFormat, "Invalid format for basic authentication")
}
