package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert appends one audit-log row.
func (r *AuditPostgres) Insert(ctx context.Context, e *model.AuditEntry) error {
	const q = `
		INSERT INTO audit_log (id, action, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Action,
		e.Actor,
		e.Details,
		e.CreatedAt,
	)
	return err
}
