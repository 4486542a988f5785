package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	"github.com/docg1701/iam-dashboard/internal/database"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
)

// PostgreSQLAuditRepository implements append-only audit persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// Create appends an audit entry. Uses transaction support via
// database.GetTx(). Returns an error if value serialization or database
// insertion fails.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_entries (id, actor_id, action, resource_type, resource_id, old_values, new_values, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	oldValues, newValues, err := marshalEntryValues(entry)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ActorID,
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
// transaction support via database.GetTx(). Returns an error if database
// query or value deserialization fails.
func (p *PostgreSQLAuditRepository) List(ctx context.Context, filter ListFilter) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	var builder strings.Builder
	builder.WriteString(`SELECT id, actor_id, action, resource_type, resource_id, old_values, new_values, created_at
						 FROM audit_entries`)

	conditions := []string{}
	args := []any{}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		conditions = append(conditions, "actor_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		conditions = append(conditions, "action = $"+strconv.Itoa(len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	builder.WriteString(" ORDER BY created_at DESC")
	args = append(args, filter.Limit)
	builder.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, filter.Offset)
	builder.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	rows, err := querier.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() { _ = rows.Close() }()

	entries := []*auditDomain.Entry{}
	for rows.Next() {
		var entry auditDomain.Entry
		var resourceID sql.NullString
		var oldValues, newValues []byte

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
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

func marshalEntryValues(entry *auditDomain.Entry) ([]byte, []byte, error) {
	var oldValues, newValues []byte
	var err error

	if entry.OldValues != nil {
		oldValues, err = json.Marshal(entry.OldValues)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal old values")
		}
	}
	if entry.NewValues != nil {
		newValues, err = json.Marshal(entry.NewValues)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal new values")
		}
	}

	return oldValues, newValues, nil
}

func unmarshalEntryValues(entry *auditDomain.Entry, oldValues, newValues []byte) error {
	if len(oldValues) > 0 {
		if err := json.Unmarshal(oldValues, &entry.OldValues); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal old values")
		}
	}
	if len(newValues) > 0 {
		if err := json.Unmarshal(newValues, &entry.NewValues); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal new values")
		}
	}
	return nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}
