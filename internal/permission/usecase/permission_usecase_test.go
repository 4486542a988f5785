package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	permissionCache "github.com/docg1701/iam-dashboard/internal/permission/cache"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

type mockGrantRepository struct {
	mock.Mock
}

func (m *mockGrantRepository) Upsert(ctx context.Context, grant *permissionDomain.PermissionGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *mockGrantRepository) Delete(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) error {
	args := m.Called(ctx, userID, scope)
	return args.Error(0)
}

func (m *mockGrantRepository) Get(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) (*permissionDomain.PermissionGrant, error) {
	args := m.Called(ctx, userID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permissionDomain.PermissionGrant), args.Error(1)
}

func (m *mockGrantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.PermissionGrant), args.Error(1)
}

type mockGrantCache struct {
	mock.Mock
}

func (m *mockGrantCache) Get(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*permissionDomain.PermissionGrant), args.Bool(1), args.Error(2)
}

func (m *mockGrantCache) Set(ctx context.Context, userID uuid.UUID, grants []*permissionDomain.PermissionGrant, ttl time.Duration) error {
	args := m.Called(ctx, userID, grants, ttl)
	return args.Error(0)
}

func (m *mockGrantCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockPermissionAuditRecorder struct {
	mock.Mock
}

func (m *mockPermissionAuditRecorder) Record(ctx context.Context, entry *auditDomain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type permissionTxManager struct{}

func (permissionTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type permissionUseCaseMocks struct {
	grantRepo     *mockGrantRepository
	cache         *mockGrantCache
	auditRecorder *mockPermissionAuditRecorder
}

func (m *permissionUseCaseMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.grantRepo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
	m.auditRecorder.AssertExpectations(t)
}

func newPermissionUseCaseForTest() (PermissionUseCase, *permissionUseCaseMocks) {
	mocks := &permissionUseCaseMocks{
		grantRepo:     &mockGrantRepository{},
		cache:         &mockGrantCache{},
		auditRecorder: &mockPermissionAuditRecorder{},
	}
	useCase := NewPermissionUseCase(
		mocks.grantRepo,
		mocks.cache,
		5*time.Minute,
		mocks.auditRecorder,
		permissionTxManager{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return useCase, mocks
}

func readOnlyGrant(userID uuid.UUID, scope permissionDomain.AgentScope) *permissionDomain.PermissionGrant {
	return &permissionDomain.PermissionGrant{
		ID:         uuid.Must(uuid.NewV7()),
		UserID:     userID,
		AgentScope: scope,
		Flags:      permissionDomain.OperationFlags{CanRead: true},
		GrantedBy:  uuid.Must(uuid.NewV7()),
		GrantedAt:  time.Now().UTC().Add(-time.Hour),
	}
}

func TestPermissionUseCaseValidate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_CacheHitAllowed", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{readOnlyGrant(userID, permissionDomain.ScopeClients)}
		mocks.cache.On("Get", ctx, userID).Return(grants, true, nil)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead)

		require.NoError(t, err)
		assert.True(t, allowed)
		mocks.grantRepo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})

	t.Run("Success_CacheHitOperationDenied", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{readOnlyGrant(userID, permissionDomain.ScopeClients)}
		mocks.cache.On("Get", ctx, userID).Return(grants, true, nil)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationDelete)

		require.NoError(t, err)
		assert.False(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Success_CacheMissLoadsStoreAndPopulates", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{readOnlyGrant(userID, permissionDomain.ScopeDocuments)}
		mocks.cache.On("Get", ctx, userID).Return(nil, false, nil)
		mocks.grantRepo.On("ListByUser", ctx, userID).Return(grants, nil)
		mocks.cache.On("Set", ctx, userID, grants, 5*time.Minute).Return(nil)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeDocuments, permissionDomain.OperationRead)

		require.NoError(t, err)
		assert.True(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Success_NoGrantForScopeIsDenial", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{readOnlyGrant(userID, permissionDomain.ScopeClients)}
		mocks.cache.On("Get", ctx, userID).Return(grants, true, nil)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeBilling, permissionDomain.OperationRead)

		require.NoError(t, err)
		assert.False(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Success_ExpiredGrantDenies", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		expired := readOnlyGrant(userID, permissionDomain.ScopeClients)
		past := time.Now().UTC().Add(-time.Minute)
		expired.ExpiresAt = &past
		mocks.cache.On("Get", ctx, userID).Return([]*permissionDomain.PermissionGrant{expired}, true, nil)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead)

		require.NoError(t, err)
		assert.False(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Success_CacheReadErrorFallsBackToStore", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{readOnlyGrant(userID, permissionDomain.ScopeReports)}
		mocks.cache.On("Get", ctx, userID).Return(nil, false, errors.New("connection refused"))
		mocks.grantRepo.On("ListByUser", ctx, userID).Return(grants, nil)
		mocks.cache.On("Set", ctx, userID, grants, 5*time.Minute).Return(nil)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeReports, permissionDomain.OperationRead)

		require.NoError(t, err)
		assert.True(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Success_CacheWriteErrorDoesNotFailValidation", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{readOnlyGrant(userID, permissionDomain.ScopeClients)}
		mocks.cache.On("Get", ctx, userID).Return(nil, false, nil)
		mocks.grantRepo.On("ListByUser", ctx, userID).Return(grants, nil)
		mocks.cache.On("Set", ctx, userID, grants, 5*time.Minute).Return(errors.New("connection refused"))

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead)

		require.NoError(t, err)
		assert.True(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Error_StoreFailureIsRaised", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.cache.On("Get", ctx, userID).Return(nil, false, nil)
		mocks.grantRepo.On("ListByUser", ctx, userID).Return(nil, errors.New("database gone"))

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead)

		require.Error(t, err)
		assert.False(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Error_InvalidScope", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()

		allowed, err := useCase.Validate(ctx, userID, "payroll", permissionDomain.OperationRead)

		require.ErrorIs(t, err, permissionDomain.ErrInvalidScope)
		assert.False(t, allowed)
		mocks.assertExpectations(t)
	})

	t.Run("Error_InvalidOperation", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, "export")

		require.ErrorIs(t, err, permissionDomain.ErrInvalidOperation)
		assert.False(t, allowed)
		mocks.assertExpectations(t)
	})
}

func TestPermissionUseCaseGrant(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	adminID := uuid.Must(uuid.NewV7())

	input := func() *permissionDomain.GrantInput {
		return &permissionDomain.GrantInput{
			UserID:     userID,
			AgentScope: permissionDomain.ScopeClients,
			Flags:      permissionDomain.OperationFlags{CanRead: true, CanUpdate: true},
			GrantedBy:  adminID,
		}
	}

	t.Run("Success_NewGrant", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).
			Return(nil, permissionDomain.ErrGrantNotFound)
		mocks.grantRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.PermissionGrant")).Return(nil)
		mocks.auditRecorder.On("Record", ctx, mock.MatchedBy(func(entry *auditDomain.Entry) bool {
			return entry.Action == auditDomain.ActionPermissionGranted &&
				entry.OldValues == nil &&
				entry.NewValues["agent_scope"] == "clients"
		})).Return(nil)
		mocks.cache.On("Invalidate", ctx, userID).Return(nil)

		grant, err := useCase.Grant(ctx, input())

		require.NoError(t, err)
		assert.Equal(t, userID, grant.UserID)
		assert.Equal(t, adminID, grant.GrantedBy)
		assert.True(t, grant.Flags.CanRead)
		assert.False(t, grant.Flags.CanDelete)
		assert.NotEqual(t, uuid.Nil, grant.ID)
		mocks.assertExpectations(t)
	})

	t.Run("Success_ReplaceRecordsOldValues", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		existing := readOnlyGrant(userID, permissionDomain.ScopeClients)
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).Return(existing, nil)
		mocks.grantRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.PermissionGrant")).Return(nil)
		mocks.auditRecorder.On("Record", ctx, mock.MatchedBy(func(entry *auditDomain.Entry) bool {
			return entry.OldValues != nil &&
				entry.OldValues["can_update"] == false &&
				entry.NewValues["can_update"] == true
		})).Return(nil)
		mocks.cache.On("Invalidate", ctx, userID).Return(nil)

		_, err := useCase.Grant(ctx, input())

		require.NoError(t, err)
		mocks.assertExpectations(t)
	})

	t.Run("Error_InvalidationFailureSurfaces", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).
			Return(nil, permissionDomain.ErrGrantNotFound)
		mocks.grantRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.PermissionGrant")).Return(nil)
		mocks.auditRecorder.On("Record", ctx, mock.AnythingOfType("*domain.Entry")).Return(nil)
		mocks.cache.On("Invalidate", ctx, userID).Return(errors.New("connection refused"))

		grant, err := useCase.Grant(ctx, input())

		require.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.Nil(t, grant)
		mocks.assertExpectations(t)
	})

	t.Run("Error_ExpiryInPast", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		in := input()
		past := time.Now().UTC().Add(-time.Minute)
		in.ExpiresAt = &past

		grant, err := useCase.Grant(ctx, in)

		require.ErrorIs(t, err, permissionDomain.ErrExpiryInPast)
		assert.Nil(t, grant)
		mocks.assertExpectations(t)
	})

	t.Run("Error_InvalidScope", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		in := input()
		in.AgentScope = "payroll"

		grant, err := useCase.Grant(ctx, in)

		require.ErrorIs(t, err, permissionDomain.ErrInvalidScope)
		assert.Nil(t, grant)
		mocks.assertExpectations(t)
	})

	t.Run("Error_UpsertFailureSkipsInvalidation", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).
			Return(nil, permissionDomain.ErrGrantNotFound)
		mocks.grantRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.PermissionGrant")).
			Return(errors.New("database gone"))

		grant, err := useCase.Grant(ctx, input())

		require.Error(t, err)
		assert.Nil(t, grant)
		mocks.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})

	t.Run("Error_AuditFailureRollsBackGrant", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).
			Return(nil, permissionDomain.ErrGrantNotFound)
		mocks.grantRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.PermissionGrant")).Return(nil)
		mocks.auditRecorder.On("Record", ctx, mock.AnythingOfType("*domain.Entry")).
			Return(errors.New("audit table gone"))

		grant, err := useCase.Grant(ctx, input())

		require.Error(t, err)
		assert.Nil(t, grant)
		mocks.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})
}

func TestPermissionUseCaseRevoke(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	adminID := uuid.Must(uuid.NewV7())

	t.Run("Success_RevokeExistingGrant", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		existing := readOnlyGrant(userID, permissionDomain.ScopeClients)
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).Return(existing, nil)
		mocks.grantRepo.On("Delete", ctx, userID, permissionDomain.ScopeClients).Return(nil)
		mocks.auditRecorder.On("Record", ctx, mock.MatchedBy(func(entry *auditDomain.Entry) bool {
			return entry.Action == auditDomain.ActionPermissionRevoked &&
				entry.ActorID == adminID &&
				entry.OldValues != nil && entry.NewValues == nil
		})).Return(nil)
		mocks.cache.On("Invalidate", ctx, userID).Return(nil)

		err := useCase.Revoke(ctx, userID, permissionDomain.ScopeClients, adminID)

		require.NoError(t, err)
		mocks.assertExpectations(t)
	})

	t.Run("Error_GrantNotFound", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).
			Return(nil, permissionDomain.ErrGrantNotFound)

		err := useCase.Revoke(ctx, userID, permissionDomain.ScopeClients, adminID)

		require.ErrorIs(t, err, apperrors.ErrNotFound)
		mocks.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})

	t.Run("Error_InvalidScope", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()

		err := useCase.Revoke(ctx, userID, "payroll", adminID)

		require.ErrorIs(t, err, permissionDomain.ErrInvalidScope)
		mocks.assertExpectations(t)
	})

	t.Run("Error_InvalidationFailureSurfaces", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		existing := readOnlyGrant(userID, permissionDomain.ScopeClients)
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).Return(existing, nil)
		mocks.grantRepo.On("Delete", ctx, userID, permissionDomain.ScopeClients).Return(nil)
		mocks.auditRecorder.On("Record", ctx, mock.AnythingOfType("*domain.Entry")).Return(nil)
		mocks.cache.On("Invalidate", ctx, userID).Return(errors.New("connection refused"))

		err := useCase.Revoke(ctx, userID, permissionDomain.ScopeClients, adminID)

		require.ErrorIs(t, err, apperrors.ErrUnavailable)
		mocks.assertExpectations(t)
	})

	t.Run("Error_DeleteFailureSkipsInvalidation", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		existing := readOnlyGrant(userID, permissionDomain.ScopeClients)
		mocks.grantRepo.On("Get", ctx, userID, permissionDomain.ScopeClients).Return(existing, nil)
		mocks.grantRepo.On("Delete", ctx, userID, permissionDomain.ScopeClients).
			Return(errors.New("database gone"))

		err := useCase.Revoke(ctx, userID, permissionDomain.ScopeClients, adminID)

		require.Error(t, err)
		mocks.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
		mocks.assertExpectations(t)
	})
}

func TestPermissionUseCaseList(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_ReturnsGrants", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		grants := []*permissionDomain.PermissionGrant{
			readOnlyGrant(userID, permissionDomain.ScopeClients),
			readOnlyGrant(userID, permissionDomain.ScopeReports),
		}
		mocks.grantRepo.On("ListByUser", ctx, userID).Return(grants, nil)

		got, err := useCase.List(ctx, userID)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		mocks.assertExpectations(t)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		useCase, mocks := newPermissionUseCaseForTest()
		mocks.grantRepo.On("ListByUser", ctx, userID).Return(nil, errors.New("database gone"))

		got, err := useCase.List(ctx, userID)

		require.Error(t, err)
		assert.Nil(t, got)
		mocks.assertExpectations(t)
	})
}

// inMemoryGrantRepository backs the concurrency test with real repository
// semantics instead of scripted expectations. All methods are safe for
// concurrent use.
type inMemoryGrantRepository struct {
	mu     sync.Mutex
	grants map[uuid.UUID]map[permissionDomain.AgentScope]*permissionDomain.PermissionGrant
}

func newInMemoryGrantRepository() *inMemoryGrantRepository {
	return &inMemoryGrantRepository{
		grants: make(map[uuid.UUID]map[permissionDomain.AgentScope]*permissionDomain.PermissionGrant),
	}
}

func (r *inMemoryGrantRepository) Upsert(ctx context.Context, grant *permissionDomain.PermissionGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byScope, ok := r.grants[grant.UserID]
	if !ok {
		byScope = make(map[permissionDomain.AgentScope]*permissionDomain.PermissionGrant)
		r.grants[grant.UserID] = byScope
	}
	byScope[grant.AgentScope] = grant
	return nil
}

func (r *inMemoryGrantRepository) Delete(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grants[userID][scope]; !ok {
		return permissionDomain.ErrGrantNotFound
	}
	delete(r.grants[userID], scope)
	return nil
}

func (r *inMemoryGrantRepository) Get(ctx context.Context, userID uuid.UUID, scope permissionDomain.AgentScope) (*permissionDomain.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grant, ok := r.grants[userID][scope]
	if !ok {
		return nil, permissionDomain.ErrGrantNotFound
	}
	return grant, nil
}

func (r *inMemoryGrantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grants := make([]*permissionDomain.PermissionGrant, 0, len(r.grants[userID]))
	for _, grant := range r.grants[userID] {
		grants = append(grants, grant)
	}
	return grants, nil
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(ctx context.Context, entry *auditDomain.Entry) error {
	return nil
}

func TestPermissionUseCaseConcurrentValidate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	adminID := uuid.Must(uuid.NewV7())

	t.Run("MutationsVisibleUnderConcurrentReads", func(t *testing.T) {
		useCase := NewPermissionUseCase(
			newInMemoryGrantRepository(),
			permissionCache.NewMemoryCache(),
			5*time.Minute,
			noopAuditRecorder{},
			permissionTxManager{},
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		// Background readers hammer Validate the whole time. Mid-flight they
		// may see either answer; what they must never see is an error.
		stop := make(chan struct{})
		readerErrs := make(chan error, 4)
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					if _, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead); err != nil {
						readerErrs <- err
						return
					}
				}
			}()
		}

		// Churn grant and revoke under the readers. A reader mid-cycle may
		// see either answer, and a reader that loaded the old set can
		// repopulate the cache right after an invalidation, so visibility is
		// not asserted here, only that nothing errors.
		for range 25 {
			_, err := useCase.Grant(ctx, &permissionDomain.GrantInput{
				UserID:     userID,
				AgentScope: permissionDomain.ScopeClients,
				Flags:      permissionDomain.OperationFlags{CanRead: true},
				GrantedBy:  adminID,
			})
			require.NoError(t, err)
			require.NoError(t, useCase.Revoke(ctx, userID, permissionDomain.ScopeClients, adminID))
		}

		close(stop)
		wg.Wait()

		select {
		case err := <-readerErrs:
			t.Fatalf("concurrent Validate failed: %v", err)
		default:
		}

		// With the readers quiesced, the invalidation that ran inside each
		// mutation is what makes the change visible to the next read.
		_, err := useCase.Grant(ctx, &permissionDomain.GrantInput{
			UserID:     userID,
			AgentScope: permissionDomain.ScopeClients,
			Flags:      permissionDomain.OperationFlags{CanRead: true},
			GrantedBy:  adminID,
		})
		require.NoError(t, err)

		allowed, err := useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead)
		require.NoError(t, err)
		require.True(t, allowed, "a committed grant must be visible to the next read")

		require.NoError(t, useCase.Revoke(ctx, userID, permissionDomain.ScopeClients, adminID))

		allowed, err = useCase.Validate(ctx, userID, permissionDomain.ScopeClients, permissionDomain.OperationRead)
		require.NoError(t, err)
		require.False(t, allowed, "a revoked grant must stop answering on the next read")
	})
}
