package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"ndavault/internal/audit"
	"ndavault/internal/http/middleware"
	"ndavault/internal/service"
)

// Guards are the access checks wrapped around the routes.
type Guards struct {
	// Auth authenticates end users and stores the account for CurrentUser.
	Auth fiber.Handler
	// Internal protects operator endpoints.
	Internal fiber.Handler
	// Recorder receives audit events for document actions.
	Recorder middleware.AuditRecorder
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, g Guards) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/me", g.Auth, Me())

	nda := app.Group("/nda", g.Auth)
	nda.Post("/generate", GenerateText())
	nda.Post("/generate-pdf", middleware.Audit(g.Recorder, audit.ActionDocumentGenerated), GeneratePDF(docSvc))

	docs := app.Group("/documents", g.Auth)
	docs.Get("/", ListDocuments(docSvc))
	docs.Get("/:id", middleware.AuditOpen(g.Recorder), OpenDocument(docSvc))
	docs.Delete("/:id", middleware.Audit(g.Recorder, audit.ActionDocumentDeleted), DeleteDocument(docSvc))

	app.Post("/internal/cleanup", g.Internal, SweepExpired(docSvc))
}
