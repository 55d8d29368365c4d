package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

type permissionJSON struct {
	Group string `json:"group"`
	Name  string `json:"name"`
}

func encodePermissions(perms []domain.Permission) (string, error) {
	rows := make([]permissionJSON, len(perms))
	for i, p := range perms {
		rows[i] = permissionJSON{Group: p.Group, Name: p.Name}
	}
	return encodeJSON(rows)
}

func decodePermissions(s string) ([]domain.Permission, error) {
	var rows []permissionJSON
	if err := json.Unmarshal([]byte(s), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]domain.Permission, len(rows))
	for i, r := range rows {
		out[i] = domain.Permission{Group: r.Group, Name: r.Name}
	}
	return out, nil
}

type accountsRepo struct {
	db dbtx
}

const getAccountByID = `
SELECT id, domain, external_id, active, roles, permissions,
       email, email_verified, phone, phone_verified, created_at
FROM accounts WHERE id = ?`

func (r *accountsRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var (
		a                        domain.Account
		externalID, email, phone sql.NullString
		active, emailOK, phoneOK int
		roles, perms             string
		createdAt                int64
	)
	err := r.db.QueryRowContext(ctx, getAccountByID, id).Scan(
		&a.ID, &a.Domain, &externalID, &active, &roles, &perms,
		&email, &emailOK, &phone, &phoneOK, &createdAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	a.ExternalID = mapNullString(externalID)
	a.Active = active != 0
	a.CreatedAt = fromMillis(createdAt)
	if a.Roles, err = decodeStrings(roles); err != nil {
		return nil, err
	}
	if a.Permissions, err = decodePermissions(perms); err != nil {
		return nil, err
	}
	if email.Valid {
		a.Email = &domain.Contact{Value: email.String, Verified: emailOK != 0}
	}
	if phone.Valid {
		a.Phone = &domain.Contact{Value: phone.String, Verified: phoneOK != 0}
	}
	return &a, nil
}

const createAccount = `
INSERT INTO accounts (id, domain, external_id, active, roles, permissions,
                      email, email_verified, phone, phone_verified, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *accountsRepo) Create(ctx context.Context, a *domain.Account) error {
	perms, err := encodePermissions(a.Permissions)
	if err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var (
		email, phone     sql.NullString
		emailOK, phoneOK bool
	)
	if a.Email != nil {
		email, emailOK = mapStringNull(a.Email.Value), a.Email.Verified
	}
	if a.Phone != nil {
		phone, phoneOK = mapStringNull(a.Phone.Value), a.Phone.Verified
	}

	_, err = r.db.ExecContext(ctx, createAccount,
		a.ID, a.Domain, mapStringNull(a.ExternalID), boolToInt(a.Active),
		encodeStrings(a.Roles), perms,
		email, boolToInt(emailOK), phone, boolToInt(phoneOK),
		toMillis(a.CreatedAt),
	)
	return mapInsertErr(err)
}
