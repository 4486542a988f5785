package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationFlags holds the per-operation allow bits of a grant.
type OperationFlags struct {
	CanCreate bool `json:"can_create"`
	CanRead   bool `json:"can_read"`
	CanUpdate bool `json:"can_update"`
	CanDelete bool `json:"can_delete"`
}

// Allows reports whether the flags permit the given operation.
func (f OperationFlags) Allows(op Operation) bool {
	switch op {
	case OperationCreate:
		return f.CanCreate
	case OperationRead:
		return f.CanRead
	case OperationUpdate:
		return f.CanUpdate
	case OperationDelete:
		return f.CanDelete
	}
	return false
}

// PermissionGrant is a user's allowance for one agent scope. Unique per
// (user_id, agent_scope); absence of a grant is denial.
type PermissionGrant struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	AgentScope AgentScope     `json:"agent_scope"`
	Flags      OperationFlags `json:"flags"`
	GrantedBy  uuid.UUID      `json:"granted_by"`
	GrantedAt  time.Time      `json:"granted_at"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}

// Allows reports whether the grant permits the operation at the given time.
// An expired grant permits nothing.
func (g *PermissionGrant) Allows(op Operation, now time.Time) bool {
	if g.ExpiresAt != nil && !now.Before(*g.ExpiresAt) {
		return false
	}
	return g.Flags.Allows(op)
}

// GrantInput carries the parameters of a grant mutation.
type GrantInput struct {
	UserID     uuid.UUID
	AgentScope AgentScope
	Flags      OperationFlags
	GrantedBy  uuid.UUID
	ExpiresAt  *time.Time
}
