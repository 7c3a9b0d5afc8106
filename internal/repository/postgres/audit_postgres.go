package postgres

import (
	"context"
	"database/sql"

	"ndavault/internal/model"
	"ndavault/internal/repository"
)

// AuditPostgres appends rows to audit_logs.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert writes one audit entry.
func (r *AuditPostgres) Insert(ctx context.Context, e *model.AuditEntry) error {
	const q = `
		INSERT INTO audit_logs (id, user_id, document_id, action, ip_hash, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.UserID,
		e.DocumentID,
		e.Action,
		e.IPHash,
		e.UserAgent,
		e.CreatedAt,
	)
	return err
}
