package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ndavault/internal/credit"
	"ndavault/internal/model"
	"ndavault/internal/repository"
	"ndavault/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("document not found")
	ErrContentRequired  = errors.New("document content is required")
	ErrCreditsExhausted = credit.ErrCreditsExhausted
	ErrRenderFailed     = errors.New("unable to generate pdf")
	ErrStorage          = errors.New("object storage failure")
)

const (
	defaultPageLimit = 10
	pdfContentType   = "application/pdf"
)

var tracer = otel.Tracer("ndavault/internal/service")

// Ledger reserves and refunds generation credits.
type Ledger interface {
	Reserve(ctx context.Context, userID string, cost int) (credit.Reservation, error)
	Rollback(ctx context.Context, r credit.Reservation) error
}

// Renderer turns agreement text into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// Options are the lifecycle settings of a DocumentService.
type Options struct {
	DocumentType string
	Cost         int
	Retention    time.Duration
	SignedURLTTL time.Duration
	MaxPageLimit int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// GeneratedDocument is a committed history record together with its PDF.
type GeneratedDocument struct {
	Document *model.Document
	PDF      []byte
}

// SweepResult summarizes one expiry sweep.
type SweepResult struct {
	Scanned         int `json:"scanned"`
	Removed         int `json:"removed"`
	StorageFailures int `json:"storage_failures"`
	RecordFailures  int `json:"record_failures"`
}

// DocumentService defines the document lifecycle use cases.
type DocumentService interface {
	// GeneratePDF reserves credit, renders text, stores the PDF and records it in
	// the owner's history. A render failure refunds limited-mode credit.
	GeneratePDF(ctx context.Context, owner model.User, text string) (*GeneratedDocument, error)

	// List returns the owner's visible documents, newest first.
	List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error)

	// Open returns a URL the caller should be redirected to.
	Open(ctx context.Context, ownerID, id string, download bool) (string, error)

	// Delete removes the stored object and then the record. A storage failure
	// aborts and keeps the record.
	Delete(ctx context.Context, ownerID, id string) error

	// SweepExpired removes every expired document. Storage failures are logged
	// and skipped; the record is removed regardless.
	SweepExpired(ctx context.Context) (*SweepResult, error)
}

type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	ledger   Ledger
	renderer Renderer
	opts     Options
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	ledger Ledger,
	renderer Renderer,
	opts Options,
	metrics *Metrics,
	logger *slog.Logger,
) DocumentService {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = storage.DefaultPresignExpiry
	}
	if opts.MaxPageLimit <= 0 {
		opts.MaxPageLimit = 100
	}
	return &documentService{
		store:    store,
		repo:     repo,
		ledger:   ledger,
		renderer: renderer,
		opts:     opts,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "document_service")),
		now:      time.Now,
	}
}

func (s *documentService) GeneratePDF(ctx context.Context, owner model.User, text string) (*GeneratedDocument, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.GeneratePDF",
		trace.WithAttributes(attribute.String("user.id", owner.ID)))
	defer span.End()

	if owner.ID == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrContentRequired
	}

	res, err := s.ledger.Reserve(ctx, owner.ID, s.opts.Cost)
	if err != nil {
		if errors.Is(err, credit.ErrCreditsExhausted) {
			s.metrics.incCreditDenied()
			return nil, ErrCreditsExhausted
		}
		span.RecordError(err)
		return nil, fmt.Errorf("reserve credit: %w", err)
	}
	span.SetAttributes(attribute.String("credit.mode", res.Mode.String()))

	pdf, err := s.renderer.Render(ctx, text)
	if err != nil {
		s.metrics.incRenderFailure()
		s.rollback(ctx, res)
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		s.logger.ErrorContext(ctx, "pdf generation failed",
			slog.String("user_id", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	filename := storage.DisplayFilename(s.opts.DocumentType, owner.Name, now)
	key := storage.ObjectKey(s.opts.DocumentType, owner.ID, id+"_"+filename)

	info, err := s.store.Put(ctx, key, bytes.NewReader(pdf), storage.PutObjectOptions{
		Size:        int64(len(pdf)),
		ContentType: pdfContentType,
		Metadata: map[string]string{
			"owner-id":         owner.ID,
			"document-type":    s.opts.DocumentType,
			"display-filename": filename,
		},
	})
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "pdf upload failed",
			slog.String("user_id", owner.ID),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: upload: %w", ErrStorage, err)
	}

	doc := &model.Document{
		ID:           id,
		UserID:       owner.ID,
		Email:        owner.Email,
		UserName:     owner.Name,
		DocumentType: s.opts.DocumentType,
		Filename:     filename,
		StorageKey:   info.Key,
		Size:         int64(len(pdf)),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.opts.Retention),
		Status:       model.StatusActive,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Remove the orphaned object; the record was never committed.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.metrics.incGenerated()
	s.logger.InfoContext(ctx, "document generated",
		slog.String("user_id", owner.ID),
		slog.String("document_id", stored.ID),
		slog.String("credit_mode", res.Mode.String()),
		slog.Int("bytes", len(pdf)),
	)
	return &GeneratedDocument{Document: stored, PDF: pdf}, nil
}

// rollback refunds res after a failed render. The refund runs on a detached
// context so a cancelled request still restores the balance.
func (s *documentService) rollback(ctx context.Context, res credit.Reservation) {
	switch res.Mode {
	case credit.ModeUnlimited:
		return
	case credit.ModeLimited:
		if err := s.ledger.Rollback(context.WithoutCancel(ctx), res); err != nil {
			s.logger.ErrorContext(ctx, "credit rollback failed",
				slog.String("user_id", res.UserID),
				slog.Int("cost", res.Cost),
				slog.String("error", err.Error()),
			)
			return
		}
		s.metrics.incRollback()
	default:
		s.logger.ErrorContext(ctx, "credit rollback skipped: unknown reservation mode",
			slog.String("user_id", res.UserID),
			slog.String("mode", res.Mode.String()),
		)
	}
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error) {
	if ownerID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > s.opts.MaxPageLimit {
		limit = s.opts.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByOwner(ctx, ownerID, s.now().UTC(), repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Open(ctx context.Context, ownerID, id string, download bool) (string, error) {
	doc, err := s.findOwned(ctx, ownerID, id)
	if err != nil {
		return "", err
	}

	// Legacy records live at a public URL and cannot be forced to download.
	if doc.IsLegacy() {
		return doc.StorageKey, nil
	}

	u, err := s.store.PresignGet(ctx, doc.StorageKey, storage.PresignOptions{
		Expiry:   s.opts.SignedURLTTL,
		Download: download,
		Filename: doc.Filename,
	})
	if err != nil {
		return "", fmt.Errorf("%w: presign: %w", ErrStorage, err)
	}
	return u, nil
}

func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.findOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if !doc.IsLegacy() {
		if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("%w: delete: %w", ErrStorage, err)
		}
	}
	return s.repo.Delete(ctx, doc.ID)
}

func (s *documentService) SweepExpired(ctx context.Context) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.SweepExpired")
	defer span.End()

	docs, err := s.repo.ListExpired(ctx, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list expired: %w", err)
	}

	res := &SweepResult{Scanned: len(docs)}
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			s.metrics.addSweepRemoved(res.Removed)
			return res, err
		}

		if !d.IsLegacy() {
			if err := s.store.Delete(ctx, d.StorageKey); err != nil {
				res.StorageFailures++
				s.logger.WarnContext(ctx, "sweep: storage delete failed",
					slog.String("document_id", d.ID),
					slog.String("key", d.StorageKey),
					slog.String("error", err.Error()),
				)
			}
		}

		if err := s.repo.Delete(ctx, d.ID); err != nil {
			res.RecordFailures++
			s.logger.ErrorContext(ctx, "sweep: record delete failed",
				slog.String("document_id", d.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Removed++
	}

	s.metrics.addSweepRemoved(res.Removed)
	span.SetAttributes(
		attribute.Int("sweep.scanned", res.Scanned),
		attribute.Int("sweep.removed", res.Removed),
		attribute.Int("sweep.storage_failures", res.StorageFailures),
	)
	s.logger.InfoContext(ctx, "expiry sweep finished",
		slog.Int("scanned", res.Scanned),
		slog.Int("removed", res.Removed),
		slog.Int("storage_failures", res.StorageFailures),
		slog.Int("record_failures", res.RecordFailures),
	)
	return res, nil
}

// findOwned loads an active, unexpired document of ownerID. A document owned
// by someone else is reported exactly like a missing one.
func (s *documentService) findOwned(ctx context.Context, ownerID, id string) (*model.Document, error) {
	if ownerID == "" || id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindActiveByOwner(ctx, id, ownerID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}
