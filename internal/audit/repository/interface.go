// Package repository provides append-only PostgreSQL and MySQL persistence
// for audit entries. Entries are inserted through database.GetTx so grant
// mutations and their audit record share one transaction.
package repository

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
)

// ListFilter narrows an audit listing. Zero-value fields are ignored.
type ListFilter struct {
	ActorID *uuid.UUID
	Action  *auditDomain.Action
	Limit   int
	Offset  int
}

// Repository defines append-only persistence for audit entries. There is no
// update or delete.
type Repository interface {
	// Create appends an entry. Implementations must write through
	// database.GetTx so the entry joins the caller's transaction when one is
	// active.
	Create(ctx context.Context, entry *auditDomain.Entry) error

	// List retrieves entries newest first, filtered and paginated.
	List(ctx context.Context, filter ListFilter) ([]*auditDomain.Entry, error)
}
