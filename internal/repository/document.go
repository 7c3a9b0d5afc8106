package repository

import (
	"context"
	"time"

	"ndavault/internal/model"
)

// DocumentRepository persists document history records.
// Every owner-scoped lookup filters by user id and active status; callers never
// see another user's rows.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindActiveByOwner returns the active, unexpired document id owned by ownerID.
	// It returns ErrNotFound when no such row exists, whatever the reason.
	FindActiveByOwner(ctx context.Context, id, ownerID string, now time.Time) (*model.Document, error)

	// ListByOwner returns the owner's active, unexpired documents, newest first.
	ListByOwner(ctx context.Context, ownerID string, now time.Time, pq PageQuery) (*PageResult[model.Document], error)

	// ListExpired returns every active document whose expiry is at or before now.
	ListExpired(ctx context.Context, now time.Time) ([]model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
