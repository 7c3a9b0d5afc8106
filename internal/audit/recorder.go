// Package audit records user actions against documents. Recording is best
// effort: a failed insert is logged and never reaches the caller.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ndavault/internal/model"
	"ndavault/internal/repository"
)

// Action tags.
const (
	ActionDocumentGenerated  = "document_generated"
	ActionDocumentViewed     = "document_viewed"
	ActionDocumentDownloaded = "document_downloaded"
	ActionDocumentDeleted    = "document_deleted"
)

const writeTimeout = 2 * time.Second

// Event is what a caller knows about an action when it completes.
type Event struct {
	UserID     string
	DocumentID string
	Action     string
	ClientIP   string
	UserAgent  string
}

// Recorder writes audit entries without ever failing the surrounding operation.
type Recorder struct {
	repo   repository.AuditRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder builds a Recorder on top of repo.
func NewRecorder(repo repository.AuditRepository, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger.With(slog.String("component", "audit")),
		now:    time.Now,
	}
}

// Record stores ev. The write is detached from ctx cancellation and bounded by a
// short timeout so a client disconnect does not drop the entry.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	entry := &model.AuditEntry{
		ID:        uuid.NewString(),
		UserID:    ev.UserID,
		Action:    ev.Action,
		IPHash:    HashIP(ev.ClientIP),
		UserAgent: ev.UserAgent,
		CreatedAt: r.now().UTC(),
	}
	if ev.DocumentID != "" {
		id := ev.DocumentID
		entry.DocumentID = &id
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "audit log panicked", slog.Any("panic", p), slog.String("action", ev.Action))
		}
	}()

	if err := r.repo.Insert(wctx, entry); err != nil {
		r.logger.WarnContext(ctx, "audit log failed",
			slog.String("action", ev.Action),
			slog.String("user_id", ev.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// HashIP returns the hex SHA-256 of a client address so raw IPs are never stored.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
