package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ndavault/internal/model"
	"ndavault/internal/repository"
)

const documentColumns = `id, user_id, email, user_name, document_type, filename, storage_key, size, created_at, expires_at, status`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*model.Document, error) {
	var d model.Document
	if err := s.Scan(
		&d.ID,
		&d.UserID,
		&d.Email,
		&d.UserName,
		&d.DocumentType,
		&d.Filename,
		&d.StorageKey,
		&d.Size,
		&d.CreatedAt,
		&d.ExpiresAt,
		&d.Status,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.UserID,
		doc.Email,
		doc.UserName,
		doc.DocumentType,
		doc.Filename,
		doc.StorageKey,
		doc.Size,
		doc.CreatedAt,
		doc.ExpiresAt,
		doc.Status,
	)
	return scanDocument(row)
}

// FindActiveByOwner fetches a single active, unexpired document owned by ownerID.
func (r *DocumentPostgres) FindActiveByOwner(ctx context.Context, id, ownerID string, now time.Time) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND user_id = $2 AND status = 'active' AND expires_at > $3
	`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, ownerID, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByOwner returns the owner's visible documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, now time.Time, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `
		SELECT COUNT(*) FROM documents
		WHERE user_id = $1 AND status = 'active' AND expires_at > $2
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID, now).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1 AND status = 'active' AND expires_at > $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, now, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// ListExpired returns active documents whose retention has elapsed, oldest first.
func (r *DocumentPostgres) ListExpired(ctx context.Context, now time.Time) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE status = 'active' AND expires_at <= $1
		ORDER BY expires_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// Delete removes a document by ID. A missing row is not an error, so two
// concurrent deletes of the same record both succeed.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
