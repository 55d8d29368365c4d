package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
)

// NewAccount describes an account created from the command line.
type NewAccount struct {
	Domain      string
	Identifier  string
	Password    string
	ExternalID  string
	Roles       []string
	Permissions []string // "group:name"
}

// CreateAccount stores an account and, when an identifier is given, its
// password credentials in one transaction.
func (app *Application) CreateAccount(ctx context.Context, input NewAccount) (*domain.Account, error) {
	perms := make([]domain.Permission, 0, len(input.Permissions))
	for _, s := range input.Permissions {
		p, ok := domain.ParsePermission(s)
		if !ok {
			return nil, fmt.Errorf("permission %q is not in group:name form", s)
		}
		perms = append(perms, p)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:          idx.NewAt(now).String(),
		Domain:      input.Domain,
		ExternalID:  input.ExternalID,
		Active:      true,
		Roles:       input.Roles,
		Permissions: perms,
		CreatedAt:   now,
	}

	var creds *domain.Credentials
	if input.Identifier != "" {
		hash, err := app.hasher.Hash(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		creds = &domain.Credentials{
			ID:           idx.NewAt(now).String(),
			AccountID:    account.ID,
			Domain:       input.Domain,
			Identifier:   input.Identifier,
			PasswordHash: hash,
			Active:       true,
			CreatedAt:    now,
		}
	}

	err := app.db.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return err
		}
		if creds != nil {
			return tx.Credentials().Create(ctx, creds)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	app.logger.Info("account created", "account_id", account.ID, "domain", account.Domain)
	return account, nil
}
