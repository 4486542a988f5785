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

// MySQLGrantRepository implements PermissionGrant persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLGrantRepository struct {
	db *sql.DB
}

// Upsert inserts the grant or replaces the existing one for the same
// (user, scope) pair using BINARY(16) for UUIDs. Uses transaction support via
// database.GetTx(). Returns an error if UUID marshaling or database insertion
// fails.
func (m *MySQLGrantRepository) Upsert(ctx context.Context, grant *permissionDomain.PermissionGrant) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO permission_grants (id, user_id, agent_scope, can_create, can_read, can_update, can_delete, granted_by, granted_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  id = VALUES(id),
				  can_create = VALUES(can_create),
				  can_read = VALUES(can_read),
				  can_update = VALUES(can_update),
				  can_delete = VALUES(can_delete),
				  granted_by = VALUES(granted_by),
				  granted_at = VALUES(granted_at),
				  expires_at = VALUES(expires_at)`

	id, err := grant.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal grant id")
	}

	userID, err := grant.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	grantedBy, err := grant.GrantedBy.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal granted_by id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		grant.AgentScope,
		grant.Flags.CanCreate,
		grant.Flags.CanRead,
		grant.Flags.CanUpdate,
		grant.Flags.CanDelete,
		grantedBy,
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
// or an error if UUID marshaling or database deletion fails.
func (m *MySQLGrantRepository) Delete(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM permission_grants WHERE user_id = ? AND agent_scope = ?`

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(ctx, query, id, scope)
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
// or an error if UUID unmarshaling or database query fails.
func (m *MySQLGrantRepository) Get(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) (*permissionDomain.PermissionGrant, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, agent_scope, can_create, can_read, can_update, can_delete, granted_by, granted_at, expires_at
			  FROM permission_grants WHERE user_id = ? AND agent_scope = ?`

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	return scanMySQLGrant(querier.QueryRowContext(ctx, query, id, scope).Scan)
}

// ListByUser retrieves all grants for a user ordered by scope. Uses
// transaction support via database.GetTx(). Returns an empty slice when the
// user has none, or an error if UUID marshaling or database query fails.
func (m *MySQLGrantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, agent_scope, can_create, can_read, can_update, can_delete, granted_by, granted_at, expires_at
			  FROM permission_grants WHERE user_id = ? ORDER BY agent_scope`

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission grants")
	}
	defer func() { _ = rows.Close() }()

	grants := []*permissionDomain.PermissionGrant{}
	for rows.Next() {
		grant, err := scanMySQLGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permission grants")
	}

	return grants, nil
}

func scanMySQLGrant(scan func(dest ...any) error) (*permissionDomain.PermissionGrant, error) {
	var grant permissionDomain.PermissionGrant
	var idBytes []byte
	var userIDBytes []byte
	var grantedByBytes []byte

	err := scan(
		&idBytes,
		&userIDBytes,
		&grant.AgentScope,
		&grant.Flags.CanCreate,
		&grant.Flags.CanRead,
		&grant.Flags.CanUpdate,
		&grant.Flags.CanDelete,
		&grantedByBytes,
		&grant.GrantedAt,
		&grant.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrGrantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission grant")
	}

	if err := grant.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal grant id")
	}
	if err := grant.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	if err := grant.GrantedBy.UnmarshalBinary(grantedByBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal granted_by id")
	}

	return &grant, nil
}

// NewMySQLGrantRepository creates a new MySQL PermissionGrant repository.
func NewMySQLGrantRepository(db *sql.DB) *MySQLGrantRepository {
	return &MySQLGrantRepository{db: db}
}
