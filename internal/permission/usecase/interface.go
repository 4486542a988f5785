// Package usecase implements the permission evaluation and grant mutation logic.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// GrantRepository defines persistence operations for permission grants.
// Implementations must support transaction-aware operations via context propagation.
type GrantRepository interface {
	// Upsert inserts or replaces the grant for the (user, scope) pair.
	Upsert(ctx context.Context, grant *permissionDomain.PermissionGrant) error

	// Delete removes the grant for the (user, scope) pair. Returns
	// ErrGrantNotFound when no such grant exists.
	Delete(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) error

	// Get retrieves the grant for the (user, scope) pair. Returns
	// ErrGrantNotFound when no such grant exists.
	Get(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) (*permissionDomain.PermissionGrant, error)

	// ListByUser retrieves all grants for a user. Returns an empty slice when
	// the user has none.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, error)
}

// AuditRecorder appends permission mutation events to the audit trail. The
// implementation must write through database.GetTx so the entry joins the
// caller's transaction.
type AuditRecorder interface {
	Record(ctx context.Context, entry *auditDomain.Entry) error
}

// PermissionUseCase evaluates and mutates agent-scoped permissions.
type PermissionUseCase interface {
	// Validate reports whether the user may perform the operation in the
	// scope. Denial is a false return; an error means infrastructure failure,
	// never denial. Reads go through the cache; a miss loads the user's full
	// grant set from the repository and populates the cache.
	Validate(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope, op permissionDomain.Operation) (bool, error)

	// Grant upserts a grant and its audit entry in one transaction, then
	// invalidates the user's cache entry before returning.
	Grant(ctx context.Context, input *permissionDomain.GrantInput) (*permissionDomain.PermissionGrant, error)

	// Revoke deletes the grant for the (user, scope) pair and writes the
	// audit entry in one transaction, then invalidates the user's cache entry
	// before returning. Returns ErrGrantNotFound when no grant exists.
	Revoke(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope, revokedBy uuid.UUID) error

	// List retrieves all grants for a user straight from the repository.
	List(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, error)
}
