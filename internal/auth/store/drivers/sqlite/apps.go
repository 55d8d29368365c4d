package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
)

type appsRepo struct {
	db dbtx
}

const getAppByID = `
SELECT id, domain, external_id, parent_account_id, active, roles, permissions, created_at
FROM apps WHERE id = ?`

func (r *appsRepo) GetByID(ctx context.Context, id string) (*domain.App, error) {
	var (
		a                  domain.App
		externalID, parent sql.NullString
		active             int
		roles, perms       string
		createdAt          int64
	)
	err := r.db.QueryRowContext(ctx, getAppByID, id).Scan(
		&a.ID, &a.Domain, &externalID, &parent, &active, &roles, &perms, &createdAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	a.ExternalID = mapNullString(externalID)
	a.ParentAccountID = mapNullString(parent)
	a.Active = active != 0
	a.CreatedAt = fromMillis(createdAt)
	if a.Roles, err = decodeStrings(roles); err != nil {
		return nil, err
	}
	if a.Permissions, err = decodePermissions(perms); err != nil {
		return nil, err
	}
	return &a, nil
}

const createApp = `
INSERT INTO apps (id, domain, external_id, parent_account_id, active, roles, permissions, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (r *appsRepo) Create(ctx context.Context, a *domain.App) error {
	perms, err := encodePermissions(a.Permissions)
	if err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, createApp,
		a.ID, a.Domain, mapStringNull(a.ExternalID), mapStringNull(a.ParentAccountID),
		boolToInt(a.Active), encodeStrings(a.Roles), perms, toMillis(a.CreatedAt),
	)
	return mapInsertErr(err)
}
