package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	"github.com/docg1701/iam-dashboard/internal/testutil"
)

func TestPostgreSQLAuditRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	actorID := uuid.Must(uuid.NewV7())

	repo := NewPostgreSQLAuditRepository(db)

	entry := auditDomain.NewEntry(actorID, auditDomain.ActionPermissionGranted, "permission_grant", uuid.Must(uuid.NewV7()).String())
	entry.NewValues = map[string]any{"agent_scope": "clients", "can_read": true}

	err := repo.Create(ctx, entry)
	require.NoError(t, err)

	entries, err := repo.List(ctx, ListFilter{Limit: 10})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, actorID, entries[0].ActorID)
	assert.Equal(t, auditDomain.ActionPermissionGranted, entries[0].Action)
	assert.Equal(t, "permission_grant", entries[0].ResourceType)
	assert.Equal(t, entry.ResourceID, entries[0].ResourceID)
	assert.Nil(t, entries[0].OldValues)
	assert.Equal(t, "clients", entries[0].NewValues["agent_scope"])
	assert.Equal(t, true, entries[0].NewValues["can_read"])
	assert.WithinDuration(t, entry.CreatedAt, entries[0].CreatedAt, time.Second)
}

func TestPostgreSQLAuditRepository_Create_WithoutResourceID(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()

	repo := NewPostgreSQLAuditRepository(db)

	entry := auditDomain.NewEntry(uuid.Must(uuid.NewV7()), auditDomain.ActionLoginFailed, "user", "")

	err := repo.Create(ctx, entry)
	require.NoError(t, err)

	entries, err := repo.List(ctx, ListFilter{Limit: 10})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].ResourceID)
}

func TestPostgreSQLAuditRepository_List_Filters(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	firstActor := uuid.Must(uuid.NewV7())
	secondActor := uuid.Must(uuid.NewV7())

	repo := NewPostgreSQLAuditRepository(db)

	require.NoError(t, repo.Create(ctx, auditDomain.NewEntry(firstActor, auditDomain.ActionLogin, "user", firstActor.String())))
	require.NoError(t, repo.Create(ctx, auditDomain.NewEntry(firstActor, auditDomain.ActionLogout, "user", firstActor.String())))
	require.NoError(t, repo.Create(ctx, auditDomain.NewEntry(secondActor, auditDomain.ActionLogin, "user", secondActor.String())))

	byActor, err := repo.List(ctx, ListFilter{ActorID: &firstActor, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byActor, 2)

	login := auditDomain.ActionLogin
	byAction, err := repo.List(ctx, ListFilter{Action: &login, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byAction, 2)

	both, err := repo.List(ctx, ListFilter{ActorID: &secondActor, Action: &login, Limit: 10})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, secondActor, both[0].ActorID)
}

func TestPostgreSQLAuditRepository_List_Pagination(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	actorID := uuid.Must(uuid.NewV7())

	repo := NewPostgreSQLAuditRepository(db)

	for range 5 {
		require.NoError(t, repo.Create(ctx, auditDomain.NewEntry(actorID, auditDomain.ActionTokenRefreshed, "refresh_token", "")))
	}

	page, err := repo.List(ctx, ListFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.List(ctx, ListFilter{Limit: 10, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
