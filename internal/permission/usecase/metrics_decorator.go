package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docg1701/iam-dashboard/internal/metrics"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// permissionUseCaseWithMetrics decorates PermissionUseCase with metrics instrumentation.
type permissionUseCaseWithMetrics struct {
	next    PermissionUseCase
	metrics metrics.BusinessMetrics
}

// NewPermissionUseCaseWithMetrics wraps a PermissionUseCase with metrics recording.
func NewPermissionUseCaseWithMetrics(useCase PermissionUseCase, m metrics.BusinessMetrics) PermissionUseCase {
	return &permissionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Validate records metrics for permission evaluations. A denial is still a
// "success": the operation answered, the answer was no.
func (p *permissionUseCaseWithMetrics) Validate(
	ctx context.Context,
	userID uuid.UUID,
	scope permissionDomain.AgentScope,
	op permissionDomain.Operation,
) (bool, error) {
	start := time.Now()
	allowed, err := p.next.Validate(ctx, userID, scope, op)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "permission", "permission_validate", status)
	p.metrics.RecordDuration(ctx, "permission", "permission_validate", time.Since(start), status)

	return allowed, err
}

// Grant records metrics for grant mutations.
func (p *permissionUseCaseWithMetrics) Grant(
	ctx context.Context,
	input *permissionDomain.GrantInput,
) (*permissionDomain.PermissionGrant, error) {
	start := time.Now()
	grant, err := p.next.Grant(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "permission", "permission_grant", status)
	p.metrics.RecordDuration(ctx, "permission", "permission_grant", time.Since(start), status)

	return grant, err
}

// Revoke records metrics for grant revocations.
func (p *permissionUseCaseWithMetrics) Revoke(
	ctx context.Context,
	userID uuid.UUID,
	scope permissionDomain.AgentScope,
	revokedBy uuid.UUID,
) error {
	start := time.Now()
	err := p.next.Revoke(ctx, userID, scope, revokedBy)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "permission", "permission_revoke", status)
	p.metrics.RecordDuration(ctx, "permission", "permission_revoke", time.Since(start), status)

	return err
}

// List records metrics for grant listing.
func (p *permissionUseCaseWithMetrics) List(
	ctx context.Context,
	userID uuid.UUID,
) ([]*permissionDomain.PermissionGrant, error) {
	start := time.Now()
	grants, err := p.next.List(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "permission", "permission_list", status)
	p.metrics.RecordDuration(ctx, "permission", "permission_list", time.Since(start), status)

	return grants, err
}
