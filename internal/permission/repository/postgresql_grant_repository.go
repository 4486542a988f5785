// Package repository provides PostgreSQL and MySQL persistence for permission
// grants. Each (user, scope) pair holds at most one grant, enforced by a
// unique constraint and written with upsert semantics.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/docg1701/iam-dashboard/internal/database"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// PostgreSQLGrantRepository implements PermissionGrant persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLGrantRepository struct {
	db *sql.DB
}

// Upsert inserts the grant or replaces the existing one for the same
// (user, scope) pair. Uses transaction support via database.GetTx(). Returns
// an error if database insertion fails.
func (p *PostgreSQLGrantRepository) Upsert(ctx context.Context, grant *permissionDomain.PermissionGrant) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO permission_grants (id, user_id, agent_scope, can_create, can_read, can_update, can_delete, granted_by, granted_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (user_id, agent_scope) DO UPDATE
			  SET id = EXCLUDED.id,
				  can_create = EXCLUDED.can_create,
				  can_read = EXCLUDED.can_read,
				  can_update = EXCLUDED.can_update,
				  can_delete = EXCLUDED.can_delete,
				  granted_by = EXCLUDED.granted_by,
				  granted_at = EXCLUDED.granted_at,
				  expires_at = EXCLUDED.expires_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		grant.ID,
		grant.UserID,
		grant.AgentScope,
		grant.Flags.CanCreate,
		grant.Flags.CanRead,
		grant.Flags.CanUpdate,
		grant.Flags.CanDelete,
		grant.GrantedBy,
		grant.GrantedAt,
		grant.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert permission grant")
	}
	return nil
}

// Delete removes the grant for the (user, scope) pair. Uses transaction
// support via database.GetTx(). Returns ErrGrantNotFound if no grant exists,
// or an error if database deletion fails.
func (p *PostgreSQLGrantRepository) Delete(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM permission_grants WHERE user_id = $1 AND agent_scope = $2`

	result, err := querier.ExecContext(ctx, query, userID, scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete permission grant")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return permissionDomain.ErrGrantNotFound
	}

	return nil
}

// Get retrieves the grant for the (user, scope) pair. Uses transaction
// support via database.GetTx(). Returns ErrGrantNotFound if no grant exists,
// or an error if database query fails.
func (p *PostgreSQLGrantRepository) Get(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) (*permissionDomain.PermissionGrant, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, agent_scope, can_create, can_read, can_update, can_delete, granted_by, granted_at, expires_at
			  FROM permission_grants WHERE user_id = $1 AND agent_scope = $2`

	var grant permissionDomain.PermissionGrant

	err := querier.QueryRowContext(ctx, query, userID, scope).Scan(
		&grant.ID,
		&grant.UserID,
		&grant.AgentScope,
		&grant.Flags.CanCreate,
		&grant.Flags.CanRead,
		&grant.Flags.CanUpdate,
		&grant.Flags.CanDelete,
		&grant.GrantedBy,
		&grant.GrantedAt,
		&grant.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrGrantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission grant")
	}

	return &grant, nil
}

// ListByUser retrieves all grants for a user ordered by scope. Uses
// transaction support via database.GetTx(). Returns an empty slice when the
// user has none, or an error if database query fails.
func (p *PostgreSQLGrantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, agent_scope, can_create, can_read, can_update, can_delete, granted_by, granted_at, expires_at
			  FROM permission_grants WHERE user_id = $1 ORDER BY agent_scope`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission grants")
	}
	defer func() { _ = rows.Close() }()

	grants := []*permissionDomain.PermissionGrant{}
	for rows.Next() {
		var grant permissionDomain.PermissionGrant

		err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.AgentScope,
			&grant.Flags.CanCreate,
			&grant.Flags.CanRead,
			&grant.Flags.CanUpdate,
			&grant.Flags.CanDelete,
			&grant.GrantedBy,
			&grant.GrantedAt,
			&grant.ExpiresAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission grant")
		}

		grants = append(grants, &grant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permission grants")
	}

	return grants, nil
}

// NewPostgreSQLGrantRepository creates a new PostgreSQL PermissionGrant repository.
func NewPostgreSQLGrantRepository(db *sql.DB) *PostgreSQLGrantRepository {
	return &PostgreSQLGrantRepository{db: db}
}
