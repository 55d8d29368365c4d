package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
)

type accountTokensRepo struct {
	db dbtx
}

const accountTokenColumns = `id, account_id, purpose, restrictions, session,
       pkce_challenge, pkce_method, email, expires_at, created_at`

type accountTokenRow struct {
	id, accountID, purpose           string
	restrictions, session            sql.NullString
	pkceChallenge, pkceMethod, email sql.NullString
	expiresAt, createdAt             int64
}

func (row *accountTokenRow) dest() []any {
	return []any{
		&row.id, &row.accountID, &row.purpose, &row.restrictions, &row.session,
		&row.pkceChallenge, &row.pkceMethod, &row.email, &row.expiresAt, &row.createdAt,
	}
}

// record rebuilds the domain value. token is supplied by the caller since
// only its hash is stored.
func (row *accountTokenRow) record(token string) (*domain.AccountToken, error) {
	t := &domain.AccountToken{
		ID:        row.id,
		Token:     token,
		AccountID: row.accountID,
		Purpose:   domain.Purpose(row.purpose),
		Email:     mapNullString(row.email),
		ExpiresAt: fromMillis(row.expiresAt),
		CreatedAt: fromMillis(row.createdAt),
	}
	if row.restrictions.Valid {
		t.Restrictions = &domain.TokenRestrictions{}
		if err := json.Unmarshal([]byte(row.restrictions.String), t.Restrictions); err != nil {
			return nil, fmt.Errorf("sqlite: decode restrictions: %w", err)
		}
	}
	if row.session.Valid {
		if err := json.Unmarshal([]byte(row.session.String), &t.Session); err != nil {
			return nil, fmt.Errorf("sqlite: decode session: %w", err)
		}
	}
	pkce, err := domain.NewPKCEChallenge(mapNullString(row.pkceChallenge), mapNullString(row.pkceMethod))
	if err != nil {
		return nil, fmt.Errorf("sqlite: decode pkce: %w", err)
	}
	t.PKCE = pkce
	return t, nil
}

const insertAccountToken = `
INSERT INTO account_tokens (id, token_hash, account_id, purpose, restrictions, session,
                            pkce_challenge, pkce_method, email, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *accountTokensRepo) Save(ctx context.Context, t *domain.AccountToken) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	var restrictions, session sql.NullString
	if t.Restrictions != nil {
		s, err := encodeJSON(t.Restrictions)
		if err != nil {
			return err
		}
		restrictions = mapStringNull(s)
	}
	if t.Session != (domain.SessionInfo{}) {
		s, err := encodeJSON(t.Session)
		if err != nil {
			return err
		}
		session = mapStringNull(s)
	}

	var challenge, method sql.NullString
	if t.PKCE != nil {
		challenge, method = mapStringNull(t.PKCE.Challenge), mapStringNull(t.PKCE.Method)
	}

	_, err := r.db.ExecContext(ctx, insertAccountToken,
		t.ID, cryptox.FingerprintToken(t.Token), t.AccountID, string(t.Purpose),
		restrictions, session, challenge, method, mapStringNull(t.Email),
		toMillis(t.ExpiresAt), toMillis(t.CreatedAt),
	)
	return mapInsertErr(err)
}

const getAccountTokenByHash = `SELECT ` + accountTokenColumns + `
FROM account_tokens WHERE token_hash = ?`

func (r *accountTokensRepo) GetByToken(ctx context.Context, token string) (*domain.AccountToken, error) {
	var row accountTokenRow
	if err := r.db.QueryRowContext(ctx, getAccountTokenByHash, cryptox.FingerprintToken(token)).Scan(row.dest()...); err != nil {
		return nil, mapNotFound(err)
	}
	return row.record(token)
}

// SQLite serializes writers, so only one DELETE can match the row and
// RETURN it.
const deleteAccountTokenByHash = `DELETE FROM account_tokens WHERE token_hash = ?
RETURNING ` + accountTokenColumns

func (r *accountTokensRepo) DeleteByToken(ctx context.Context, token string) (*domain.AccountToken, error) {
	var row accountTokenRow
	if err := r.db.QueryRowContext(ctx, deleteAccountTokenByHash, cryptox.FingerprintToken(token)).Scan(row.dest()...); err != nil {
		return nil, mapNotFound(err)
	}
	return row.record(token)
}

const deleteExpiredAccountTokens = `DELETE FROM account_tokens WHERE expires_at > 0 AND expires_at <= ?`

func (r *accountTokensRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredAccountTokens, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
