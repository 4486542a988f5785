package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	"github.com/docg1701/iam-dashboard/internal/testutil"
)

func TestPostgreSQLRefreshTokenRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "postgres", "token-owner@example.com")

	repo := NewPostgreSQLRefreshTokenRepository(db)

	token := &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890",
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now().UTC(),
	}

	err := repo.Create(ctx, token)
	require.NoError(t, err)

	retrieved, err := repo.GetByTokenHash(ctx, token.TokenHash)
	require.NoError(t, err)

	assert.Equal(t, token.ID, retrieved.ID)
	assert.Equal(t, token.TokenHash, retrieved.TokenHash)
	assert.Equal(t, userID, retrieved.UserID)
	assert.Nil(t, retrieved.RevokedAt)
	assert.WithinDuration(t, token.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestPostgreSQLRefreshTokenRepository_GetByTokenHash_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRefreshTokenRepository(db)
	ctx := context.Background()

	_, err := repo.GetByTokenHash(ctx, "unknown-hash")
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
}

func TestPostgreSQLRefreshTokenRepository_Revoke(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "postgres", "revoke-owner@example.com")

	repo := NewPostgreSQLRefreshTokenRepository(db)

	token := &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "hash-to-revoke",
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))

	revokedAt := time.Now().UTC()
	require.NoError(t, repo.Revoke(ctx, token.ID, revokedAt))

	retrieved, err := repo.GetByTokenHash(ctx, token.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, retrieved.RevokedAt)
	assert.WithinDuration(t, revokedAt, *retrieved.RevokedAt, time.Second)
	assert.False(t, retrieved.Usable(time.Now().UTC()))

	// A second revocation reports the row already gone and leaves the
	// original timestamp in place.
	later := revokedAt.Add(time.Hour)
	assert.ErrorIs(t, repo.Revoke(ctx, token.ID, later), authDomain.ErrRefreshTokenNotFound)

	retrieved, err = repo.GetByTokenHash(ctx, token.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, retrieved.RevokedAt)
	assert.WithinDuration(t, revokedAt, *retrieved.RevokedAt, time.Second)
}

func TestPostgreSQLRefreshTokenRepository_Revoke_UnknownToken(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRefreshTokenRepository(db)

	err := repo.Revoke(context.Background(), uuid.Must(uuid.NewV7()), time.Now().UTC())
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
}
