package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	"github.com/docg1701/iam-dashboard/internal/database"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	permissionCache "github.com/docg1701/iam-dashboard/internal/permission/cache"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// permissionUseCase implements PermissionUseCase with a cache-aside read path.
// Grant mutations and their audit entries share one transaction, and the
// user's cache entry is invalidated before the mutation returns, so a
// security-relevant change never waits out the TTL.
type permissionUseCase struct {
	grantRepo     GrantRepository
	cache         permissionCache.Cache
	cacheTTL      time.Duration
	auditRecorder AuditRecorder
	txManager     database.TxManager
	logger        *slog.Logger
}

// NewPermissionUseCase creates a new PermissionUseCase with the provided dependencies.
func NewPermissionUseCase(
	grantRepo GrantRepository,
	cache permissionCache.Cache,
	cacheTTL time.Duration,
	auditRecorder AuditRecorder,
	txManager database.TxManager,
	logger *slog.Logger,
) PermissionUseCase {
	return &permissionUseCase{
		grantRepo:     grantRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
		auditRecorder: auditRecorder,
		txManager:     txManager,
		logger:        logger,
	}
}

// Validate evaluates the (user, scope, operation) decision against the cached
// grant set, loading from the repository on a miss.
//
// A cache read failure degrades to a repository load instead of failing the
// request; a repository failure is raised, since answering without data would
// have to guess. Absence of a grant is denial, not an error.
func (p *permissionUseCase) Validate(
	ctx context.Context,
	userID uuid.UUID,
	scope permissionDomain.AgentScope,
	op permissionDomain.Operation,
) (bool, error) {
	if !scope.Valid() {
		return false, permissionDomain.ErrInvalidScope
	}
	if !op.Valid() {
		return false, permissionDomain.ErrInvalidOperation
	}

	grants, hit, err := p.cache.Get(ctx, userID)
	if err != nil {
		p.logger.Warn("grant cache read failed, falling back to store",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		hit = false
	}

	if !hit {
		grants, err = p.grantRepo.ListByUser(ctx, userID)
		if err != nil {
			return false, err
		}

		if cacheErr := p.cache.Set(ctx, userID, grants, p.cacheTTL); cacheErr != nil {
			p.logger.Warn("grant cache write failed",
				slog.String("user_id", userID.String()),
				slog.Any("error", cacheErr),
			)
		}
	}

	now := time.Now().UTC()
	for _, grant := range grants {
		if grant.AgentScope == scope {
			return grant.Allows(op, now), nil
		}
	}

	return false, nil
}

// Grant upserts a grant row and its audit entry in one transaction, then
// invalidates the user's cache entry before returning.
func (p *permissionUseCase) Grant(
	ctx context.Context,
	input *permissionDomain.GrantInput,
) (*permissionDomain.PermissionGrant, error) {
	if !input.AgentScope.Valid() {
		return nil, permissionDomain.ErrInvalidScope
	}

	now := time.Now().UTC()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, permissionDomain.ErrExpiryInPast
	}

	grant := &permissionDomain.PermissionGrant{
		ID:         uuid.Must(uuid.NewV7()),
		UserID:     input.UserID,
		AgentScope: input.AgentScope,
		Flags:      input.Flags,
		GrantedBy:  input.GrantedBy,
		GrantedAt:  now,
		ExpiresAt:  input.ExpiresAt,
	}

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		old, err := p.grantRepo.Get(ctx, input.UserID, input.AgentScope)
		if err != nil && !errors.Is(err, permissionDomain.ErrGrantNotFound) {
			return err
		}

		if err := p.grantRepo.Upsert(ctx, grant); err != nil {
			return err
		}

		entry := auditDomain.NewEntry(
			input.GrantedBy,
			auditDomain.ActionPermissionGranted,
			"permission_grant",
			grant.ID.String(),
		)
		if old != nil {
			entry.OldValues = grantAuditValues(old)
		}
		entry.NewValues = grantAuditValues(grant)

		return p.auditRecorder.Record(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if err := p.invalidate(ctx, input.UserID); err != nil {
		return nil, err
	}

	return grant, nil
}

// Revoke deletes the grant row and writes its audit entry in one transaction,
// then invalidates the user's cache entry before returning.
func (p *permissionUseCase) Revoke(
	ctx context.Context,
	userID uuid.UUID,
	scope permissionDomain.AgentScope,
	revokedBy uuid.UUID,
) error {
	if !scope.Valid() {
		return permissionDomain.ErrInvalidScope
	}

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		old, err := p.grantRepo.Get(ctx, userID, scope)
		if err != nil {
			return err
		}

		if err := p.grantRepo.Delete(ctx, userID, scope); err != nil {
			return err
		}

		entry := auditDomain.NewEntry(
			revokedBy,
			auditDomain.ActionPermissionRevoked,
			"permission_grant",
			old.ID.String(),
		)
		entry.OldValues = grantAuditValues(old)

		return p.auditRecorder.Record(ctx, entry)
	})
	if err != nil {
		return err
	}

	return p.invalidate(ctx, userID)
}

// List retrieves all grants for a user from the repository, bypassing the cache.
func (p *permissionUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
) ([]*permissionDomain.PermissionGrant, error) {
	return p.grantRepo.ListByUser(ctx, userID)
}

// invalidate drops the user's cached grant set. The committed mutation is not
// rolled back for a cache failure, but the failure surfaces to the caller: a
// revoked permission must not keep answering from a stale cache entry
// unnoticed. Retrying the mutation is safe; the upsert and delete are
// idempotent.
func (p *permissionUseCase) invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := p.cache.Invalidate(ctx, userID); err != nil {
		p.logger.Error("grant cache invalidation failed",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		return apperrors.Wrap(errors.Join(apperrors.ErrUnavailable, err), "grant cache invalidation failed")
	}
	return nil
}

// grantAuditValues flattens a grant into the audit entry value map.
func grantAuditValues(grant *permissionDomain.PermissionGrant) map[string]any {
	values := map[string]any{
		"user_id":     grant.UserID.String(),
		"agent_scope": string(grant.AgentScope),
		"can_create":  grant.Flags.CanCreate,
		"can_read":    grant.Flags.CanRead,
		"can_update":  grant.Flags.CanUpdate,
		"can_delete":  grant.Flags.CanDelete,
		"granted_by":  grant.GrantedBy.String(),
	}
	if grant.ExpiresAt != nil {
		values["expires_at"] = grant.ExpiresAt.Format(time.RFC3339)
	}
	return values
}
