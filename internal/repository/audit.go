package repository

import (
	"context"

	"ndavault/internal/model"
)

// AuditRepository appends audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *model.AuditEntry) error
}
