// Package audit is the append-only trail of privileged admin actions.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// Store persists audit entries. Entries are insert-only; there is no update
// or delete surface at all.
type Store interface {
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
	ListAudit(ctx context.Context, page domain.Page) ([]domain.AuditEntry, int, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record appends one entry, filling id and timestamp when missing.
func (s *Service) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.store.AppendAudit(ctx, entry)
}

// List returns entries newest-first. Only super admins may read the trail.
func (s *Service) List(ctx context.Context, admin *domain.Admin, page domain.Page) ([]domain.AuditEntry, int, error) {
	if !admin.Role.Can(domain.ActionViewAuditLog) {
		return nil, 0, domain.ErrForbidden
	}
	return s.store.ListAudit(ctx, page.Normalize())
}
