package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"ndavault/internal/audit"
)

// DocumentIDHeader names the document created by a generation request.
const DocumentIDHeader = "X-Document-ID"

// AuditRecorder stores audit events. Implementations never fail the request.
type AuditRecorder interface {
	Record(ctx context.Context, ev audit.Event)
}

// Audit records action after the handler completed successfully.
func Audit(rec AuditRecorder, action string) fiber.Handler {
	return auditWith(rec, func(*fiber.Ctx) string { return action })
}

// AuditOpen records a view or a download depending on the action query.
func AuditOpen(rec AuditRecorder) fiber.Handler {
	return auditWith(rec, func(c *fiber.Ctx) string {
		if c.Query("action") == "download" {
			return audit.ActionDocumentDownloaded
		}
		return audit.ActionDocumentViewed
	})
}

func auditWith(rec AuditRecorder, action func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return err
		}

		u, ok := CurrentUser(c)
		if !ok {
			return nil
		}

		docID := c.Params("id")
		if docID == "" {
			docID = string(c.Response().Header.Peek(DocumentIDHeader))
		}

		rec.Record(c.UserContext(), audit.Event{
			UserID:     u.ID,
			DocumentID: docID,
			Action:     action(c),
			ClientIP:   c.IP(),
			UserAgent:  c.Get(fiber.HeaderUserAgent),
		})
		return nil
	}
}
