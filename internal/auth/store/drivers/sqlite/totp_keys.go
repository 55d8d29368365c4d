package sqlite

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

type totpKeysRepo struct {
	db dbtx
}

const getLatestTOTPKey = `
SELECT id, account_id, secret, created_at
FROM totp_keys WHERE account_id = ?
ORDER BY created_at DESC, id DESC LIMIT 1`

func (r *totpKeysRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.TOTPKey, error) {
	var (
		k         domain.TOTPKey
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, getLatestTOTPKey, accountID).Scan(
		&k.ID, &k.AccountID, &k.Secret, &createdAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	k.CreatedAt = fromMillis(createdAt)
	return &k, nil
}

const createTOTPKey = `
INSERT INTO totp_keys (id, account_id, secret, created_at) VALUES (?, ?, ?, ?)`

func (r *totpKeysRepo) Create(ctx context.Context, k *domain.TOTPKey) error {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, createTOTPKey, k.ID, k.AccountID, k.Secret, toMillis(k.CreatedAt))
	return mapInsertErr(err)
}
