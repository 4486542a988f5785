// Package dto provides data transfer objects for the permission HTTP surface.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
	customValidation "github.com/docg1701/iam-dashboard/internal/validation"
)

func agentScopeValues() []any {
	scopes := permissionDomain.AgentScopes()
	values := make([]any, len(scopes))
	for i, scope := range scopes {
		values[i] = string(scope)
	}
	return values
}

// GrantRequest describes a grant to create or replace for a (user, scope)
// pair.
type GrantRequest struct {
	UserID     string     `json:"user_id"`
	AgentScope string     `json:"agent_scope"`
	CanCreate  bool       `json:"can_create"`
	CanRead    bool       `json:"can_read"`
	CanUpdate  bool       `json:"can_update"`
	CanDelete  bool       `json:"can_delete"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// Validate checks if the grant request is valid.
func (r *GrantRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&r.AgentScope,
			validation.Required,
			validation.In(agentScopeValues()...),
		),
	)
}

// RevokeRequest identifies the (user, scope) grant to remove.
type RevokeRequest struct {
	UserID     string `json:"user_id"`
	AgentScope string `json:"agent_scope"`
}

// Validate checks if the revoke request is valid.
func (r *RevokeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&r.AgentScope,
			validation.Required,
			validation.In(agentScopeValues()...),
		),
	)
}
