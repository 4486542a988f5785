// Package domain defines the append-only audit trail model. Entries are
// write-once: nothing in the application updates or deletes them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what an audit entry records.
type Action string

const (
	ActionLogin             Action = "login"
	ActionLoginFailed       Action = "login_failed"
	ActionTokenRefreshed    Action = "token_refreshed"
	ActionLogout            Action = "logout"
	ActionTOTPEnabled       Action = "totp_enabled"
	ActionTOTPDisabled      Action = "totp_disabled"
	ActionUserCreated       Action = "user_created"
	ActionPermissionGranted Action = "permission_granted"
	ActionPermissionRevoked Action = "permission_revoked"
)

// Entry records a security-relevant event. Grant mutations write their entry
// in the same transaction as the mutation itself; authentication events are
// recorded best-effort right after the fact.
type Entry struct {
	ID           uuid.UUID
	ActorID      uuid.UUID
	Action       Action
	ResourceType string
	ResourceID   string
	OldValues    map[string]any
	NewValues    map[string]any
	CreatedAt    time.Time
}

// NewEntry builds an entry stamped with a UUIDv7 and the current UTC time.
func NewEntry(actorID uuid.UUID, action Action, resourceType, resourceID string) *Entry {
	return &Entry{
		ID:           uuid.Must(uuid.NewV7()),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    time.Now().UTC(),
	}
}
