package repository

import (
	"context"

	"docaudit/internal/model"
)

// AuditRepository is the append-only audit log. Entries are never read back
// by the core, only inserted.
type AuditRepository interface {
	Insert(ctx context.Context, e *model.AuditEntry) error
}
