package sqlite

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

type otpsRepo struct {
	db dbtx
}

const otpColumns = `id, account_id, password, expires_at, created_at`

const getOTPByID = `SELECT ` + otpColumns + ` FROM one_time_passwords WHERE id = ?`

func (r *otpsRepo) GetByID(ctx context.Context, id string) (*domain.OneTimePassword, error) {
	return r.scanOne(ctx, getOTPByID, id)
}

const deleteOTPByID = `DELETE FROM one_time_passwords WHERE id = ? RETURNING ` + otpColumns

func (r *otpsRepo) DeleteByID(ctx context.Context, id string) (*domain.OneTimePassword, error) {
	return r.scanOne(ctx, deleteOTPByID, id)
}

func (r *otpsRepo) scanOne(ctx context.Context, query, id string) (*domain.OneTimePassword, error) {
	var (
		o                    domain.OneTimePassword
		expiresAt, createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.AccountID, &o.Password, &expiresAt, &createdAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	o.ExpiresAt = fromMillis(expiresAt)
	o.CreatedAt = fromMillis(createdAt)
	return &o, nil
}

const createOTP = `
INSERT INTO one_time_passwords (id, account_id, password, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)`

func (r *otpsRepo) Create(ctx context.Context, o *domain.OneTimePassword) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, createOTP,
		o.ID, o.AccountID, o.Password, toMillis(o.ExpiresAt), toMillis(o.CreatedAt),
	)
	return mapInsertErr(err)
}
