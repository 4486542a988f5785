package repository

import (
	"context"
	"database/sql"
	"strings"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	"github.com/docg1701/iam-dashboard/internal/database"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
)

// MySQLAuditRepository implements append-only audit persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditRepository struct {
	db *sql.DB
}

// Create appends an audit entry using BINARY(16) for UUIDs. Uses transaction
// support via database.GetTx(). Returns an error if UUID marshaling, value
// serialization, or database insertion fails.
func (m *MySQLAuditRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_entries (id, actor_id, action, resource_type, resource_id, old_values, new_values, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}

	actorID, err := entry.ActorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal actor id")
	}

	oldValues, newValues, err := marshalEntryValues(entry)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		actorID,
		entry.Action,
		entry.ResourceType,
		nullString(entry.ResourceID),
		oldValues,
		newValues,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}
	return nil
}

// List retrieves audit entries newest first, narrowed by the filter. Uses
// transaction support via database.GetTx(). Returns an error if UUID
// handling, database query, or value deserialization fails.
func (m *MySQLAuditRepository) List(ctx context.Context, filter ListFilter) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	var builder strings.Builder
	builder.WriteString(`SELECT id, actor_id, action, resource_type, resource_id, old_values, new_values, created_at
						 FROM audit_entries`)

	conditions := []string{}
	args := []any{}
	if filter.ActorID != nil {
		actorID, err := filter.ActorID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal actor id")
		}
		conditions = append(conditions, "actor_id = ?")
		args = append(args, actorID)
	}
	if filter.Action != nil {
		conditions = append(conditions, "action = ?")
		args = append(args, *filter.Action)
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	builder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() { _ = rows.Close() }()

	entries := []*auditDomain.Entry{}
	for rows.Next() {
		var entry auditDomain.Entry
		var idBytes, actorIDBytes []byte
		var resourceID sql.NullString
		var oldValues, newValues []byte

		err := rows.Scan(
			&idBytes,
			&actorIDBytes,
			&entry.Action,
			&entry.ResourceType,
			&resourceID,
			&oldValues,
			&newValues,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry id")
		}
		if err := entry.ActorID.UnmarshalBinary(actorIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal actor id")
		}

		entry.ResourceID = resourceID.String
		if err := unmarshalEntryValues(&entry, oldValues, newValues); err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// NewMySQLAuditRepository creates a new MySQL audit repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}
