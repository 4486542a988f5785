package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOperationFlags_Allows(t *testing.T) {
	flags := OperationFlags{CanRead: true, CanUpdate: true}

	assert.True(t, flags.Allows(OperationRead))
	assert.True(t, flags.Allows(OperationUpdate))
	assert.False(t, flags.Allows(OperationCreate))
	assert.False(t, flags.Allows(OperationDelete))
	assert.False(t, flags.Allows(Operation("unknown")))
}

func TestPermissionGrant_Allows(t *testing.T) {
	now := time.Now().UTC()

	t.Run("AllowsOperationWithinExpiry", func(t *testing.T) {
		expires := now.Add(time.Hour)
		grant := &PermissionGrant{
			ID:         uuid.Must(uuid.NewV7()),
			UserID:     uuid.Must(uuid.NewV7()),
			AgentScope: ScopeClients,
			Flags:      OperationFlags{CanRead: true},
			GrantedAt:  now,
			ExpiresAt:  &expires,
		}

		assert.True(t, grant.Allows(OperationRead, now))
		assert.False(t, grant.Allows(OperationDelete, now))
	})

	t.Run("DeniesEverythingAfterExpiry", func(t *testing.T) {
		expires := now.Add(time.Minute)
		grant := &PermissionGrant{
			Flags:     OperationFlags{CanCreate: true, CanRead: true, CanUpdate: true, CanDelete: true},
			GrantedAt: now,
			ExpiresAt: &expires,
		}

		assert.False(t, grant.Allows(OperationRead, now.Add(2*time.Minute)))
		assert.False(t, grant.Allows(OperationRead, expires))
	})

	t.Run("NoExpiryNeverExpires", func(t *testing.T) {
		grant := &PermissionGrant{
			Flags:     OperationFlags{CanRead: true},
			GrantedAt: now,
		}

		assert.True(t, grant.Allows(OperationRead, now.Add(1000*time.Hour)))
	})
}

func TestAgentScope_Valid(t *testing.T) {
	for _, scope := range AgentScopes() {
		assert.True(t, scope.Valid(), "scope %q should be valid", scope)
	}
	assert.False(t, AgentScope("payroll").Valid())
	assert.False(t, AgentScope("").Valid())
}

func TestOperation_Valid(t *testing.T) {
	assert.True(t, OperationCreate.Valid())
	assert.True(t, OperationRead.Valid())
	assert.True(t, OperationUpdate.Valid())
	assert.True(t, OperationDelete.Valid())
	assert.False(t, Operation("list").Valid())
}
