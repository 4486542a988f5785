// Package audit exposes the audit trail recording surface used by the auth
// and permission use cases.
package audit

import (
	"context"

	auditDomain "github.com/docg1701/iam-dashboard/internal/audit/domain"
	auditRepository "github.com/docg1701/iam-dashboard/internal/audit/repository"
)

// Recorder appends entries through the configured repository. Because the
// repository writes through database.GetTx, a Record call inside a
// transaction joins it and a call outside one runs standalone.
type Recorder struct {
	repo auditRepository.Repository
}

// NewRecorder creates a Recorder backed by the given repository.
func NewRecorder(repo auditRepository.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends the entry to the audit trail.
func (r *Recorder) Record(ctx context.Context, entry *auditDomain.Entry) error {
	return r.repo.Create(ctx, entry)
}

// List retrieves entries newest first, filtered and paginated.
func (r *Recorder) List(ctx context.Context, filter auditRepository.ListFilter) ([]*auditDomain.Entry, error) {
	return r.repo.List(ctx, filter)
}
