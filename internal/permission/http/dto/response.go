package dto

import (
	"time"

	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// GrantResponse is the wire form of a permission grant.
type GrantResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	AgentScope string     `json:"agent_scope"`
	CanCreate  bool       `json:"can_create"`
	CanRead    bool       `json:"can_read"`
	CanUpdate  bool       `json:"can_update"`
	CanDelete  bool       `json:"can_delete"`
	GrantedBy  string     `json:"granted_by"`
	GrantedAt  time.Time  `json:"granted_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// ListGrantsResponse wraps a user's grants.
type ListGrantsResponse struct {
	Grants []*GrantResponse `json:"grants"`
}

// MapGrantToResponse converts a domain grant to its wire form.
func MapGrantToResponse(grant *permissionDomain.PermissionGrant) *GrantResponse {
	return &GrantResponse{
		ID:         grant.ID.String(),
		UserID:     grant.UserID.String(),
		AgentScope: string(grant.AgentScope),
		CanCreate:  grant.Flags.CanCreate,
		CanRead:    grant.Flags.CanRead,
		CanUpdate:  grant.Flags.CanUpdate,
		CanDelete:  grant.Flags.CanDelete,
		GrantedBy:  grant.GrantedBy.String(),
		GrantedAt:  grant.GrantedAt,
		ExpiresAt:  grant.ExpiresAt,
	}
}

// MapGrantsToListResponse converts a grant slice to its wire form.
func MapGrantsToListResponse(grants []*permissionDomain.PermissionGrant) *ListGrantsResponse {
	responses := make([]*GrantResponse, len(grants))
	for i, grant := range grants {
		responses[i] = MapGrantToResponse(grant)
	}
	return &ListGrantsResponse{Grants: responses}
}
