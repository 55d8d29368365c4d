package sqlite

import (
	"context"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

type credentialsRepo struct {
	db dbtx
}

const getCredentialsByIdentifier = `
SELECT id, account_id, domain, identifier, password_hash, active, created_at
FROM credentials WHERE domain = ? AND identifier = ?`

func (r *credentialsRepo) GetByIdentifier(ctx context.Context, domainName, identifier string) (*domain.Credentials, error) {
	var (
		c         domain.Credentials
		active    int
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, getCredentialsByIdentifier, domainName, identifier).Scan(
		&c.ID, &c.AccountID, &c.Domain, &c.Identifier, &c.PasswordHash, &active, &createdAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	c.Active = active != 0
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}

const createCredentials = `
INSERT INTO credentials (id, account_id, domain, identifier, password_hash, active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (r *credentialsRepo) Create(ctx context.Context, c *domain.Credentials) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, createCredentials,
		c.ID, c.AccountID, c.Domain, c.Identifier, c.PasswordHash,
		boolToInt(c.Active), toMillis(c.CreatedAt),
	)
	return mapInsertErr(err)
}
